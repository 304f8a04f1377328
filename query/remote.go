////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package query

import (
	"context"
	"time"

	"github.com/caffeinepub/vibechat/remote"
)

// RemoteReady is the input every backend query depends on. Revalidating it
// refetches all mounted backend queries, e.g. once the backend session is
// established.
const RemoteReady = "remote"

// MessagePollInterval is how often a mounted message list is refetched. The
// backend has no push mechanism, so polling is the only way to see new
// messages.
const MessagePollInterval = 3 * time.Second

// Backend builds the queries for backend calls on one cache. Every query is
// disabled until Ready returns true.
type Backend struct {
	Cache *Cache
	API   remote.API

	// Ready reports whether the backend session is usable. Nil means always.
	Ready func() bool
}

func (b Backend) options() Options {
	return Options{Enabled: b.Ready, DependsOn: []string{RemoteReady}}
}

// UserConversations is the query of the caller's conversation ids.
func (b Backend) UserConversations() *Query[[]string] {
	return New(b.Cache, UserConversationsKey(),
		func(ctx context.Context) ([]string, error) {
			return b.API.GetUserConversations(ctx)
		}, b.options())
}

// Messages is the query of a conversation's messages. When mounted it polls
// every MessagePollInterval.
func (b Backend) Messages(conversationID string) *Query[[]remote.Message] {
	return b.MessagesEvery(conversationID, MessagePollInterval)
}

// MessagesEvery is Messages with a custom poll interval. Zero disables
// polling.
func (b Backend) MessagesEvery(conversationID string,
	interval time.Duration) *Query[[]remote.Message] {
	opts := b.options()
	opts.RefetchInterval = interval
	return New(b.Cache, MessagesKey(conversationID),
		func(ctx context.Context) ([]remote.Message, error) {
			return b.API.GetMessages(ctx, conversationID)
		}, opts)
}

// UserProfile is the query of one identity's profile. The data is nil when
// the identity has no profile.
func (b Backend) UserProfile(identity remote.Identity) *Query[*remote.UserProfile] {
	return New(b.Cache, UserProfileKey(identity.String()),
		func(ctx context.Context) (*remote.UserProfile, error) {
			return b.API.GetUserProfile(ctx, identity)
		}, b.options())
}

// CallerUserProfile is the query of the caller's own profile.
func (b Backend) CallerUserProfile() *Query[*remote.UserProfile] {
	return New(b.Cache, CallerUserProfileKey(),
		func(ctx context.Context) (*remote.UserProfile, error) {
			return b.API.GetCallerUserProfile(ctx)
		}, b.options())
}
