////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conversation

import (
	"context"
	"testing"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/userError"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	alice remote.Identity = "alice"
	bob   remote.Identity = "bob"
	carol remote.Identity = "carol"
)

// Tests that the first sender other than the caller is the other participant.
func TestOtherParticipant(t *testing.T) {
	msgs := []remote.Message{
		{Sender: alice}, {Sender: bob}, {Sender: carol},
	}
	other, ok := OtherParticipant(msgs, alice)
	require.True(t, ok)
	require.Equal(t, bob, other)

	_, ok = OtherParticipant(msgs[:1], alice)
	require.False(t, ok)
	_, ok = OtherParticipant(nil, alice)
	require.False(t, ok)
}

// Tests initials of various names.
func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Bob Builder":        "BB",
		"alice":              "A",
		"Jean Luc Picard":    "JL",
		UnknownUser:          "UU",
		"  spaced   out  ":   "SO",
		"émile zola":         "ÉZ",
		"":                   "",
	}
	for name, expected := range tests {
		require.Equal(t, expected, Initials(name), name)
	}
}

// Tests that rows are derived in id order with the other participant's
// profile, falling back to Unknown User.
func TestList_Rows(t *testing.T) {
	ctx := context.Background()
	backend := remote.NewMemory()
	a := backend.As(alice)
	b := backend.As(bob)

	require.NoError(t, b.SaveCallerUserProfile(ctx, remote.UserProfile{
		FullName: "Bob Builder", PhoneNumber: "+15550002",
		ProfilePicture: remote.FromBytes([]byte("png")),
	}))

	withBob, err := a.CreateConversation(ctx, []remote.Identity{bob})
	require.NoError(t, err)
	require.NoError(t, a.SendMessage(ctx, withBob,
		remote.Message{Sender: alice, Text: "hi"}))
	require.NoError(t, b.SendMessage(ctx, withBob,
		remote.Message{Sender: bob, Text: "hey"}))

	empty, err := a.CreateConversation(ctx, []remote.Identity{carol})
	require.NoError(t, err)

	withCarol, err := a.CreateConversation(ctx, []remote.Identity{carol})
	require.NoError(t, err)
	require.NoError(t, backend.As(carol).SendMessage(ctx, withCarol,
		remote.Message{Sender: carol, Text: "no profile"}))

	l := NewList(query.Backend{
		Cache: query.NewCache(query.DefaultParams()), API: a}, alice)

	require.Empty(t, l.Snapshot())
	_, err = l.Conversations().Read(ctx)
	require.NoError(t, err)
	for _, r := range l.Snapshot() {
		require.True(t, r.Loading, r.ConversationID)
	}

	rows, err := l.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, withBob, rows[0].ConversationID)
	require.Equal(t, bob, rows[0].Participant)
	require.Equal(t, "Bob Builder", rows[0].DisplayName)
	require.Equal(t, "BB", rows[0].Initials)
	require.NotEmpty(t, rows[0].PictureURL)

	require.Equal(t, empty, rows[1].ConversationID)
	require.Equal(t, UnknownUser, rows[1].DisplayName)
	require.Empty(t, rows[1].Participant)

	require.Equal(t, withCarol, rows[2].ConversationID)
	require.Equal(t, carol, rows[2].Participant)
	require.Equal(t, UnknownUser, rows[2].DisplayName)

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 3)
	for i, r := range snapshot {
		require.False(t, r.Loading, r.ConversationID)
		require.Equal(t, rows[i].DisplayName, r.DisplayName)
	}
}

// Tests that an anonymous caller gets the backend's rejection.
func TestList_Rows_Unauthorized(t *testing.T) {
	l := NewList(query.Backend{
		Cache: query.NewCache(query.DefaultParams()),
		API:   remote.NewMemory().As(""),
	}, "")

	_, err := l.Rows(context.Background())
	require.ErrorContains(t, err, "Unauthorized")
}

// Tests that selecting a conversation records it and calls the handler.
func TestList_Select(t *testing.T) {
	l := NewList(query.Backend{
		Cache: query.NewCache(query.DefaultParams()),
		API:   remote.NewMemory().As(alice),
	}, alice)

	var opened string
	l.OnSelect(func(id string) { opened = id })
	l.Select("c1")

	require.Equal(t, "c1", opened)
	require.Equal(t, "c1", l.Selected())
}

// Tests that Create validates input before calling the backend, and
// invalidates the conversation list on success.
func TestCreator_Create(t *testing.T) {
	ctx := context.Background()
	backend := remote.NewMemory()
	cache := query.NewCache(query.DefaultParams())
	c := NewCreator(backend.As(alice), cache)

	_, err := c.Create(ctx, "   ")
	require.EqualError(t, err, emptyPrincipalMsg)

	_, err = c.Create(ctx, "not-a-principal")
	require.EqualError(t, err, malformedPrincipalMsg)
	var userErr *userError.Error
	require.True(t, errors.As(err, &userErr))
	require.Equal(t, userError.Validation, userErr.Category)

	ids, err := backend.As(alice).GetUserConversations(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	l := NewList(query.Backend{Cache: cache, API: backend.As(alice)}, alice)
	_, err = l.Conversations().Read(ctx)
	require.NoError(t, err)

	id, err := c.Create(ctx, " aaaaa-aa ")
	require.NoError(t, err)
	require.True(t, cache.Get(query.UserConversationsKey()).Invalidated)

	ids, err = l.Conversations().Read(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{id}, ids)
}

// Tests that an anonymous creator gets the sign-in prompt.
func TestCreator_Create_Unauthorized(t *testing.T) {
	c := NewCreator(remote.NewMemory().As(""),
		query.NewCache(query.DefaultParams()))

	_, err := c.Create(context.Background(), "aaaaa-aa")
	require.EqualError(t, err, "Please sign in to start a conversation")
}
