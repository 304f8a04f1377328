////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package timeline shows the messages of one conversation. While mounted it
// polls the backend and hands a fresh View to the renderer whenever the
// message list changes. The whole history is rendered on every change.
package timeline

import (
	"context"
	"sync"
	"time"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Bubble is one message as displayed: on the right for the caller's own
// messages and on the left for everyone else's.
type Bubble struct {
	remote.Message
	Own bool
}

// Partition marks each message as the caller's own or not, keeping the
// order of msgs.
func Partition(msgs []remote.Message, caller remote.Identity) []Bubble {
	bubbles := make([]Bubble, len(msgs))
	for i, m := range msgs {
		bubbles[i] = Bubble{Message: m, Own: m.Sender == caller}
	}
	return bubbles
}

// View is what the renderer draws.
type View struct {
	Bubbles []Bubble

	// Loading is true until the first fetch completes.
	Loading bool
	Err     error

	// ScrollTo is the index of the bubble to scroll to, the last one, or -1
	// when there are none.
	ScrollTo int
}

// RenderFunc draws a View. It is called from the polling goroutine.
type RenderFunc func(View)

// Params configures a Timeline.
type Params struct {
	PollInterval time.Duration
}

// DefaultParams returns the default Timeline parameters.
func DefaultParams() Params {
	return Params{PollInterval: query.MessagePollInterval}
}

// Timeline is the mounted message list of one conversation.
type Timeline struct {
	caller   remote.Identity
	cache    *query.Cache
	messages *query.Query[[]remote.Message]
	render   RenderFunc

	observer    *query.Observer[[]remote.Message]
	unsubscribe func()
	rendered    bool
	last        []remote.Message
	lastErr     error
	mux         sync.Mutex
}

// New returns an unmounted timeline of the conversation.
func New(backend query.Backend, caller remote.Identity, conversationID string,
	params Params, render RenderFunc) *Timeline {
	return &Timeline{
		caller:   caller,
		cache:    backend.Cache,
		messages: backend.MessagesEvery(conversationID, params.PollInterval),
		render:   render,
	}
}

// Mount fetches the messages and keeps polling until Unmount. The renderer
// receives a View after every fetch that changed the list or its error.
func (t *Timeline) Mount(ctx context.Context) error {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.observer != nil {
		return errors.Errorf("timeline of %s is already mounted",
			t.messages.Key())
	}

	t.rendered = false
	t.unsubscribe = t.cache.Subscribe(t.messages.Key(), t.onFetch)
	t.observer = t.messages.Mount(ctx)
	jww.DEBUG.Printf("[TIMELINE] Mounted %s", t.messages.Key())
	return nil
}

// Unmount stops polling. No fetch and no render happen after it returns.
func (t *Timeline) Unmount() {
	t.mux.Lock()
	observer, unsubscribe := t.observer, t.unsubscribe
	t.observer, t.unsubscribe = nil, nil
	t.mux.Unlock()

	if observer == nil {
		return
	}
	unsubscribe()
	observer.Unmount()
	jww.DEBUG.Printf("[TIMELINE] Unmounted %s", t.messages.Key())
}

// View returns the current View from the cache.
func (t *Timeline) View() View {
	return t.view(t.messages.State())
}

func (t *Timeline) view(s query.State[[]remote.Message]) View {
	return View{
		Bubbles:  Partition(s.Data, t.caller),
		Loading:  !s.HasData && s.Err == nil,
		Err:      s.Err,
		ScrollTo: len(s.Data) - 1,
	}
}

// onFetch renders if the list or the error changed since the last render.
func (t *Timeline) onFetch(query.Key) {
	s := t.messages.State()

	t.mux.Lock()
	if t.observer == nil {
		t.mux.Unlock()
		return
	}
	changed := !t.rendered || !sameMessages(t.last, s.Data) ||
		!sameError(t.lastErr, s.Err)
	if changed {
		t.rendered = true
		t.last, t.lastErr = s.Data, s.Err
	}
	t.mux.Unlock()

	if changed && t.render != nil {
		t.render(t.view(s))
	}
}

// sameMessages compares message lists by content. Attachments are compared
// by URL since blob references are rebuilt on every fetch.
func sameMessages(a, b []remote.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Sender != b[i].Sender || a[i].Text != b[i].Text ||
			a[i].Timestamp != b[i].Timestamp ||
			len(a[i].Attachments) != len(b[i].Attachments) {
			return false
		}
		for j := range a[i].Attachments {
			if attachmentURL(a[i].Attachments[j]) !=
				attachmentURL(b[i].Attachments[j]) {
				return false
			}
		}
	}
	return true
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}

func attachmentURL(a remote.Attachment) string {
	if a.Blob == nil {
		return ""
	}
	return a.Blob.DirectURL()
}

// Refetch fetches the messages now. It is the manual retry after a failed
// poll; mounted timelines render the result as usual.
func (t *Timeline) Refetch(ctx context.Context) (View, error) {
	_, err := t.messages.Refetch(ctx)
	return t.View(), err
}
