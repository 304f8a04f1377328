////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package query

import (
	"net/url"
	"strings"
)

// Key identifies a cached request: the operation name followed by its
// parameters, in order. Its string form is "op/p1/p2" with every parameter
// path-escaped.
type Key string

// NewKey builds the Key for the operation and parameters.
func NewKey(op string, params ...string) Key {
	if len(params) == 0 {
		return Key(op)
	}

	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, url.PathEscape(p))
	}
	return Key(strings.Join(parts, "/"))
}

// Op returns the first segment of the key. For the social keys that is the
// feature name rather than the full operation.
func (k Key) Op() string {
	op, _, _ := strings.Cut(string(k), "/")
	return op
}

// String returns the key in its "op/p1/p2" form.
func (k Key) String() string {
	return string(k)
}

// Operation names of the cached requests made by the client.
const (
	OpUserConversations = "getUserConversations"
	OpMessages          = "getMessages"
	OpUserProfile       = "getUserProfile"
	OpCallerUserProfile = "getCallerUserProfile"
	OpFollowing         = "social/following"
	OpLikes             = "social/likes"
)

// UserConversationsKey is the key of the caller's conversation id list.
func UserConversationsKey() Key { return NewKey(OpUserConversations) }

// MessagesKey is the key of a conversation's message list.
func MessagesKey(conversationID string) Key {
	return NewKey(OpMessages, conversationID)
}

// UserProfileKey is the key of one identity's profile.
func UserProfileKey(identity string) Key {
	return NewKey(OpUserProfile, identity)
}

// CallerUserProfileKey is the key of the caller's own profile.
func CallerUserProfileKey() Key { return NewKey(OpCallerUserProfile) }

// FollowingKey is the key of the identities the caller follows.
func FollowingKey() Key { return NewKey(OpFollowing) }

// LikesKey is the key of a message's likes.
func LikesKey(messageID string) Key { return NewKey(OpLikes, messageID) }
