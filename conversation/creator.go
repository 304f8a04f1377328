////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conversation

import (
	"context"
	"strings"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/userError"
	jww "github.com/spf13/jwalterweatherman"
)

// Validation messages shown before any call is made.
const (
	emptyPrincipalMsg     = "Please enter a Principal ID"
	malformedPrincipalMsg = "Invalid Principal ID format"
)

// createMessages are the user-facing failures of creating a conversation.
func createMessages() userError.Messages {
	msgs := userError.DefaultMessages("Failed to create conversation")
	msgs.Unauthorized = "Please sign in to start a conversation"
	return msgs
}

// Creator starts new conversations.
type Creator struct {
	mutation *query.Mutation[[]remote.Identity, string]
}

// NewCreator returns a Creator that creates conversations on the API and
// invalidates the conversation list in the cache.
func NewCreator(api remote.API, cache *query.Cache) *Creator {
	create := func(ctx context.Context, participants []remote.Identity) (string, error) {
		return api.CreateConversation(ctx, participants)
	}

	return &Creator{
		mutation: query.NewMutation(cache, create,
			query.MutationOptions[[]remote.Identity, string]{
				Name: "createConversation",
				Invalidates: func([]remote.Identity, string) []query.Key {
					return []query.Key{query.UserConversationsKey()}
				},
				Messages: createMessages(),
			}),
	}
}

// Create validates the participant's principal text and creates a
// conversation with them. It returns the new conversation's id.
func (c *Creator) Create(ctx context.Context, participantText string) (string, error) {
	participantText = strings.TrimSpace(participantText)
	if participantText == "" {
		return "", userError.New(userError.Validation, emptyPrincipalMsg)
	}

	participant, err := remote.ParseIdentity(participantText)
	if err != nil {
		jww.DEBUG.Printf("[CONVERSATION] Rejected participant: %+v", err)
		return "", userError.New(userError.Validation, malformedPrincipalMsg)
	}

	id, err := c.mutation.Do(ctx, []remote.Identity{participant})
	if err != nil {
		return "", err
	}

	jww.INFO.Printf("[CONVERSATION] Created conversation %s with %s", id,
		participant)
	return id, nil
}

// Pending reports whether a creation is in flight.
func (c *Creator) Pending() bool {
	return c.mutation.Pending()
}
