////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package messenger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/caffeinepub/vibechat/event"
	"github.com/caffeinepub/vibechat/profile"
	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/timeline"
	"github.com/stretchr/testify/require"
)

const bobPrincipal = "ivwno-rqaae-bagba-faydq-qci"

func newMessenger(t *testing.T, backend *remote.Memory,
	caller remote.Identity, socialDir string) *Messenger {
	p := DefaultParams()
	p.Timeline.PollInterval = 10 * time.Millisecond
	m, err := New(Config{
		API:       backend.As(caller),
		Caller:    caller,
		SocialDir: socialDir,
		Params:    p,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// Tests that backend queries wait for SetReady and that a mounted timeline
// starts fetching once it is called.
func TestMessenger_SetReady(t *testing.T) {
	ctx := context.Background()
	backend := remote.NewMemory()
	m := newMessenger(t, backend, "alice", "")

	_, err := m.Conversations().Conversations().Read(ctx)
	require.ErrorIs(t, err, query.ErrDisabled)

	id, err := m.CreateConversation(ctx, bobPrincipal)
	require.NoError(t, err)

	var views []timeline.View
	var mux sync.Mutex
	tl := m.Timeline(id, func(v timeline.View) {
		mux.Lock()
		views = append(views, v)
		mux.Unlock()
	})
	require.NoError(t, tl.Mount(ctx))
	defer tl.Unmount()

	time.Sleep(30 * time.Millisecond)
	mux.Lock()
	require.Empty(t, views)
	mux.Unlock()

	m.SetReady()
	m.SetReady()
	require.True(t, m.Ready())
	require.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(views) > 0
	}, time.Second, time.Millisecond)

	ids, err := m.Conversations().Conversations().Read(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{id}, ids)
}

// Tests the actions of the facade and the events they report.
func TestMessenger_Actions(t *testing.T) {
	ctx := context.Background()
	backend := remote.NewMemory()
	m := newMessenger(t, backend, "alice", t.TempDir())

	var evts []event.Event
	var mux sync.Mutex
	require.NoError(t, m.Events().RegisterCallback("test", func(e event.Event) {
		mux.Lock()
		evts = append(evts, e)
		mux.Unlock()
	}))
	m.SetReady()

	id, err := m.CreateConversation(ctx, bobPrincipal)
	require.NoError(t, err)

	result, err := m.Send(ctx, id, Draft{Text: "hi bob"}, nil)
	require.NoError(t, err)
	require.True(t, result.Sent)

	msgs, err := m.Backend().Messages(id).Read(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, m.SaveProfile(ctx, profile.Draft{
		FullName: "Alice", PhoneNumber: "+12015550123"}))
	matched, err := m.MatchContacts(ctx, []string{"+12015550123"})
	require.NoError(t, err)
	require.Empty(t, matched.Matched)
	require.Equal(t, 1, matched.NotFound)

	require.NotNil(t, m.Social())
	require.NoError(t, m.Social().Follow(ctx, bobPrincipal))

	_, err = m.CreateConversation(ctx, "not a principal")
	require.Error(t, err)

	require.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(evts) == 6
	}, time.Second, time.Millisecond)

	mux.Lock()
	defer mux.Unlock()
	types := make([]string, len(evts))
	for i, e := range evts {
		types[i] = e.Category + "/" + e.Type
	}
	require.Equal(t, []string{
		"session/Ready",
		"conversation/Created",
		"message/Sent",
		"profile/Saved",
		"contacts/Matched",
		"conversation/CreateFailed",
	}, types)
}

func TestGetParameters(t *testing.T) {
	p, err := GetParameters("")
	require.NoError(t, err)
	require.Equal(t, DefaultParams(), p)

	p, err = GetParameters(`{"pollIntervalMs": 500}`)
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, p.Timeline.PollInterval)
	require.Equal(t, DefaultParams().Query.StaleTime, p.Query.StaleTime)

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"staleTimeMs":0,"pollIntervalMs":500}`, string(data))
}
