////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"context"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/userError"
)

type reaction struct {
	messageID string
	reaction  string
}

// Client exposes a Backend through the query cache. Reads are cached under
// the social keys and writes invalidate them.
type Client struct {
	backend Backend
	cache   *query.Cache

	follow   *query.Mutation[remote.Identity, struct{}]
	unfollow *query.Mutation[remote.Identity, struct{}]
	like     *query.Mutation[reaction, struct{}]
	unlike   *query.Mutation[string, struct{}]
}

// NewClient returns a Client over the backend.
func NewClient(backend Backend, cache *query.Cache) *Client {
	followMsgs := userError.DefaultMessages("Failed to update follow status")
	likeMsgs := userError.DefaultMessages("Failed to update reaction")
	following := func(remote.Identity, struct{}) []query.Key {
		return []query.Key{query.FollowingKey()}
	}

	return &Client{
		backend: backend,
		cache:   cache,
		follow: query.NewMutation(cache,
			func(ctx context.Context, target remote.Identity) (struct{}, error) {
				return struct{}{}, backend.Follow(ctx, target)
			},
			query.MutationOptions[remote.Identity, struct{}]{
				Name: "follow", Invalidates: following, Messages: followMsgs}),
		unfollow: query.NewMutation(cache,
			func(ctx context.Context, target remote.Identity) (struct{}, error) {
				return struct{}{}, backend.Unfollow(ctx, target)
			},
			query.MutationOptions[remote.Identity, struct{}]{
				Name: "unfollow", Invalidates: following, Messages: followMsgs}),
		like: query.NewMutation(cache,
			func(ctx context.Context, r reaction) (struct{}, error) {
				return struct{}{}, backend.Like(ctx, r.messageID, r.reaction)
			},
			query.MutationOptions[reaction, struct{}]{
				Name: "like",
				Invalidates: func(r reaction, _ struct{}) []query.Key {
					return []query.Key{query.LikesKey(r.messageID)}
				},
				Messages: likeMsgs,
			}),
		unlike: query.NewMutation(cache,
			func(ctx context.Context, messageID string) (struct{}, error) {
				return struct{}{}, backend.Unlike(ctx, messageID)
			},
			query.MutationOptions[string, struct{}]{
				Name: "unlike",
				Invalidates: func(messageID string, _ struct{}) []query.Key {
					return []query.Key{query.LikesKey(messageID)}
				},
				Messages: likeMsgs,
			}),
	}
}

// Following is the query of the identities the caller follows.
func (c *Client) Following() *query.Query[[]remote.Identity] {
	return query.New(c.cache, query.FollowingKey(), c.backend.Following,
		query.Options{})
}

// Likes is the query of the reactions to a message.
func (c *Client) Likes(messageID string) *query.Query[[]Like] {
	return query.New(c.cache, query.LikesKey(messageID),
		func(ctx context.Context) ([]Like, error) {
			return c.backend.Likes(ctx, messageID)
		}, query.Options{})
}

// Followers returns the identities following the caller.
func (c *Client) Followers(ctx context.Context) ([]remote.Identity, error) {
	return c.backend.Followers(ctx)
}

// IsFollowing returns true if the caller follows the target.
func (c *Client) IsFollowing(ctx context.Context, target remote.Identity) (bool, error) {
	return c.backend.IsFollowing(ctx, target)
}

// Toggle follows the target if the caller does not yet follow them and
// unfollows them otherwise. It returns whether the caller now follows them.
func (c *Client) Toggle(ctx context.Context, target remote.Identity) (bool, error) {
	following, err := c.backend.IsFollowing(ctx, target)
	if err != nil {
		return false, userError.DefaultMessages(
			"Failed to update follow status").Remap(err)
	}
	if following {
		return false, c.Unfollow(ctx, target)
	}
	return true, c.Follow(ctx, target)
}

// Follow starts following the target.
func (c *Client) Follow(ctx context.Context, target remote.Identity) error {
	_, err := c.follow.Do(ctx, target)
	return err
}

// Unfollow stops following the target.
func (c *Client) Unfollow(ctx context.Context, target remote.Identity) error {
	_, err := c.unfollow.Do(ctx, target)
	return err
}

// Like sets the caller's reaction to the message.
func (c *Client) Like(ctx context.Context, messageID, reactionText string) error {
	_, err := c.like.Do(ctx, reaction{messageID, reactionText})
	return err
}

// Unlike removes the caller's reaction to the message.
func (c *Client) Unlike(ctx context.Context, messageID string) error {
	_, err := c.unlike.Do(ctx, messageID)
	return err
}
