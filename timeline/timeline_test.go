////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package timeline

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/stretchr/testify/require"
)

// countingAPI counts GetMessages calls on an embedded API.
type countingAPI struct {
	remote.API
	calls int32
}

func (c *countingAPI) GetMessages(ctx context.Context, id string) ([]remote.Message, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.API.GetMessages(ctx, id)
}

func (c *countingAPI) count() int {
	return int(atomic.LoadInt32(&c.calls))
}

// Tests that partitioning keeps order and marks exactly the caller's
// messages as own.
func TestPartition(t *testing.T) {
	prng := rand.New(rand.NewSource(42))
	senders := []remote.Identity{"alice", "bob", "carol"}

	for n := 0; n < 20; n++ {
		msgs := make([]remote.Message, prng.Intn(30))
		for i := range msgs {
			msgs[i] = remote.Message{
				Sender:    senders[prng.Intn(len(senders))],
				Text:      strings.Repeat("x", i),
				Timestamp: prng.Int63(),
			}
		}

		bubbles := Partition(msgs, "alice")
		require.Len(t, bubbles, len(msgs))
		for i, b := range bubbles {
			require.Equal(t, msgs[i], b.Message)
			require.Equal(t, msgs[i].Sender == "alice", b.Own)
		}
	}
}

// Tests that a mounted timeline fetches at mount and on every interval,
// renders on change with the scroll target at the end, and stops fetching
// once unmounted.
func TestTimeline_Polling(t *testing.T) {
	ctx := context.Background()
	backend := remote.NewMemory()
	id, err := backend.As("alice").CreateConversation(ctx,
		[]remote.Identity{"bob"})
	require.NoError(t, err)

	api := &countingAPI{API: backend.As("alice")}
	var views []View
	var mux sync.Mutex
	tl := New(query.Backend{Cache: query.NewCache(query.DefaultParams()), API: api},
		"alice", id, Params{PollInterval: 20 * time.Millisecond},
		func(v View) {
			mux.Lock()
			views = append(views, v)
			mux.Unlock()
		})
	viewCount := func() int {
		mux.Lock()
		defer mux.Unlock()
		return len(views)
	}

	require.NoError(t, tl.Mount(ctx))
	require.Error(t, tl.Mount(ctx))

	require.Eventually(t, func() bool { return viewCount() == 1 },
		time.Second, time.Millisecond)
	mux.Lock()
	require.Empty(t, views[0].Bubbles)
	require.Equal(t, -1, views[0].ScrollTo)
	mux.Unlock()

	require.Eventually(t, func() bool { return api.count() >= 3 },
		time.Second, 5*time.Millisecond)
	require.Equal(t, 1, viewCount())

	require.NoError(t, backend.As("bob").SendMessage(ctx, id,
		remote.Message{Sender: "bob", Text: "hello"}))
	require.NoError(t, backend.As("alice").SendMessage(ctx, id,
		remote.Message{Sender: "alice", Text: "hi"}))
	lastView := func() View {
		mux.Lock()
		defer mux.Unlock()
		return views[len(views)-1]
	}
	require.Eventually(t, func() bool { return len(lastView().Bubbles) == 2 },
		time.Second, time.Millisecond)

	last := lastView()
	require.Len(t, last.Bubbles, 2)
	require.False(t, last.Bubbles[0].Own)
	require.True(t, last.Bubbles[1].Own)
	require.Equal(t, 1, last.ScrollTo)

	tl.Unmount()
	stopped := api.count()
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, stopped, api.count())
	tl.Unmount()
}

// Tests the text rendering of bubbles.
func TestRender(t *testing.T) {
	ts := time.Date(2023, 1, 2, 15, 4, 0, 0, time.Local).UnixNano()
	photo := remote.FromURL("https://cdn.example/p.png")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, View{
		Bubbles: []Bubble{
			{Message: remote.Message{Sender: "bob", Text: "look", Timestamp: ts,
				Attachments: []remote.Attachment{{Blob: photo, Type: remote.Photo}}}},
			{Message: remote.Message{Sender: "alice", Text: "nice", Timestamp: ts},
				Own: true},
		},
		ScrollTo: 1,
	}))

	expected := "bob:\n[photo] https://cdn.example/p.png\nlook\n15:04\n" +
		ownIndent + "me:\n" + ownIndent + "nice\n" + ownIndent + "15:04\n"
	require.Equal(t, expected, buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, View{ScrollTo: -1}))
	require.Equal(t, emptyTitle+"\n"+emptySubtitle+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, View{Loading: true, ScrollTo: -1}))
	require.Equal(t, loadingText+"\n", buf.String())
}
