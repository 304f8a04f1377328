////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package conversation lists the caller's conversations and creates new ones.
//
// Conversations have no record of their own on the client. The person shown
// for a conversation is derived from its messages: the first sender that is
// not the caller. This only identifies the other party of a two-person
// conversation; group conversations show whichever other member spoke first.
package conversation

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	jww "github.com/spf13/jwalterweatherman"
)

// UnknownUser is the display name of a conversation whose other participant
// cannot be determined or has no profile.
const UnknownUser = "Unknown User"

// SelectHandler is called with the id of the conversation the user opened.
type SelectHandler func(conversationID string)

// Row is one entry of the conversation list.
type Row struct {
	ConversationID string

	// Participant is the derived other participant, empty when the
	// conversation has no message from anyone but the caller.
	Participant remote.Identity
	Profile     *remote.UserProfile

	DisplayName string
	Initials    string
	PictureURL  string

	// Loading is true until both the messages and the profile are fetched.
	Loading bool
	Err     error
}

// List derives the rows of the caller's conversation list.
type List struct {
	backend query.Backend
	caller  remote.Identity

	conversations *query.Query[[]string]

	selected string
	onSelect SelectHandler
	mux      sync.RWMutex
}

// NewList returns the conversation list of the caller.
func NewList(backend query.Backend, caller remote.Identity) *List {
	return &List{
		backend:       backend,
		caller:        caller,
		conversations: backend.UserConversations(),
	}
}

// Conversations returns the query of the caller's conversation ids.
func (l *List) Conversations() *query.Query[[]string] {
	return l.conversations
}

// Rows fetches the conversation ids and then, per conversation, its messages
// and the profile of its other participant. Rows are returned in the order of
// the ids. A failure to load one row is recorded on that row only.
func (l *List) Rows(ctx context.Context) ([]Row, error) {
	ids, err := l.conversations.Read(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(ids))
	for i, id := range ids {
		rows[i] = l.row(ctx, id)
	}
	return rows, nil
}

// row loads a single conversation's row.
func (l *List) row(ctx context.Context, id string) Row {
	r := Row{ConversationID: id}

	msgs, err := l.backend.MessagesEvery(id, 0).Read(ctx)
	if err != nil {
		jww.DEBUG.Printf("[CONVERSATION] Messages of %s failed to load: %+v",
			id, err)
		r.Err = err
		r.fill(nil)
		return r
	}

	other, ok := OtherParticipant(msgs, l.caller)
	if !ok {
		r.fill(nil)
		return r
	}
	r.Participant = other

	profile, err := l.backend.UserProfile(other).Read(ctx)
	if err != nil {
		jww.DEBUG.Printf("[CONVERSATION] Profile of %s failed to load: %+v",
			other, err)
		r.Err = err
	}
	r.fill(profile)
	return r
}

// Snapshot returns the rows from what is already cached, without fetching.
// Rows whose messages or profile have not been fetched yet are Loading.
func (l *List) Snapshot() []Row {
	ids := l.conversations.State().Data

	rows := make([]Row, len(ids))
	for i, id := range ids {
		r := Row{ConversationID: id}
		msgs := l.backend.MessagesEvery(id, 0).State()
		r.Err = msgs.Err
		if !msgs.HasData {
			r.Loading = msgs.Err == nil
			r.fill(nil)
			rows[i] = r
			continue
		}

		other, ok := OtherParticipant(msgs.Data, l.caller)
		if !ok {
			r.fill(nil)
			rows[i] = r
			continue
		}
		r.Participant = other

		profile := l.backend.UserProfile(other).State()
		r.Loading = !profile.HasData && profile.Err == nil
		if profile.Err != nil {
			r.Err = profile.Err
		}
		r.fill(profile.Data)
		rows[i] = r
	}
	return rows
}

// fill sets the display fields from the profile, which may be nil.
func (r *Row) fill(profile *remote.UserProfile) {
	r.Profile = profile
	r.DisplayName = UnknownUser
	if profile != nil && strings.TrimSpace(profile.FullName) != "" {
		r.DisplayName = profile.FullName
		if profile.ProfilePicture != nil {
			r.PictureURL = profile.ProfilePicture.DirectURL()
		}
	}
	r.Initials = Initials(r.DisplayName)
}

// OtherParticipant returns the first sender that is not the caller. It
// returns false when every message is from the caller or there are none.
func OtherParticipant(msgs []remote.Message, caller remote.Identity) (remote.Identity, bool) {
	for _, m := range msgs {
		if m.Sender != caller {
			return m.Sender, true
		}
	}
	return "", false
}

// Initials returns the upper-cased first letter of the first two words of the
// name.
func Initials(name string) string {
	var sb strings.Builder
	count := 0
	for _, word := range strings.Split(name, " ") {
		if count == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
		count++
	}
	return sb.String()
}

// OnSelect sets the handler called when a conversation is selected.
func (l *List) OnSelect(handler SelectHandler) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.onSelect = handler
}

// Select records the conversation as selected and hands it to the select
// handler.
func (l *List) Select(conversationID string) {
	l.mux.Lock()
	l.selected = conversationID
	handler := l.onSelect
	l.mux.Unlock()

	jww.DEBUG.Printf("[CONVERSATION] Selected %s", conversationID)
	if handler != nil {
		handler(conversationID)
	}
}

// Selected returns the id of the selected conversation, if any.
func (l *List) Selected() string {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.selected
}
