////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package social follows users and reacts to messages.
//
// The messaging backend has no social calls yet. Until it does, LocalStub
// keeps the caller's own follows and reactions on the device, and nobody
// else ever sees them.
package social

import (
	"context"
	"strconv"

	"github.com/caffeinepub/vibechat/remote"
)

// Like is one user's reaction to a message.
type Like struct {
	User     remote.Identity
	Reaction string
}

// Backend is the contract of the social calls.
type Backend interface {
	// Follow starts following the identity. Following twice is a no-op.
	Follow(ctx context.Context, target remote.Identity) error

	// Unfollow stops following the identity.
	Unfollow(ctx context.Context, target remote.Identity) error

	// IsFollowing returns true if the caller follows the identity.
	IsFollowing(ctx context.Context, target remote.Identity) (bool, error)

	// Following returns the identities the caller follows, oldest first.
	Following(ctx context.Context) ([]remote.Identity, error)

	// Followers returns the identities following the caller.
	Followers(ctx context.Context) ([]remote.Identity, error)

	// Like sets the caller's reaction to the message, replacing any earlier
	// one. The reaction must be a single emoji.
	Like(ctx context.Context, messageID, reaction string) error

	// Unlike removes the caller's reaction to the message.
	Unlike(ctx context.Context, messageID string) error

	// Likes returns the reactions to the message, oldest first.
	Likes(ctx context.Context, messageID string) ([]Like, error)
}

// MessageID identifies a message for reactions. Messages carry no id of their
// own, so it is built from the conversation, the sender and the timestamp.
func MessageID(conversationID string, m remote.Message) string {
	return conversationID + "/" + m.Sender.String() + "/" +
		strconv.FormatInt(m.Timestamp, 10)
}
