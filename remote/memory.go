////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	jww "github.com/spf13/jwalterweatherman"
)

// memoryBlobPrefix is the URL scheme of blobs held by a Memory backend.
const memoryBlobPrefix = "mem://blobs/"

// Memory is an in-process backend that enforces the same rules as the remote
// service. It backs the CLI's offline mode and the tests of every package
// that talks to the backend.
type Memory struct {
	conversations map[string]*memoryConversation
	order         []string
	profiles      map[Identity]UserProfile
	blobs         map[string][]byte
	mux           sync.RWMutex
}

type memoryConversation struct {
	participants map[Identity]struct{}
	messages     []Message
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]*memoryConversation),
		profiles:      make(map[Identity]UserProfile),
		blobs:         make(map[string][]byte),
	}
}

// As returns an API that makes every call as the caller.
func (m *Memory) As(caller Identity) API {
	return &memorySession{backend: m, caller: caller}
}

// Blob returns the content uploaded under the hash.
func (m *Memory) Blob(hash string) ([]byte, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	data, ok := m.blobs[hash]
	return data, ok
}

// memorySession is the API of one caller on a Memory backend.
type memorySession struct {
	backend *Memory
	caller  Identity
}

func (s *memorySession) authorize(method string) error {
	if s.caller.IsAnonymous() {
		return newError(method, anonymousCallerMsg, 0)
	}
	return nil
}

// GetUserConversations returns the ids of the caller's conversations in
// creation order.
func (s *memorySession) GetUserConversations(context.Context) ([]string, error) {
	if err := s.authorize(methodGetUserConversations); err != nil {
		return nil, err
	}

	s.backend.mux.RLock()
	defer s.backend.mux.RUnlock()

	ids := make([]string, 0)
	for _, id := range s.backend.order {
		if _, ok := s.backend.conversations[id].participants[s.caller]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CreateConversation creates a conversation between the caller and the
// participants.
func (s *memorySession) CreateConversation(
	_ context.Context, participants []Identity) (string, error) {
	if err := s.authorize(methodCreateConversation); err != nil {
		return "", err
	}
	if len(participants) == 0 {
		return "", newError(methodCreateConversation, noParticipantsMsg, 0)
	}

	c := &memoryConversation{participants: map[Identity]struct{}{
		s.caller: {},
	}}
	for _, p := range participants {
		c.participants[p] = struct{}{}
	}

	id := ulid.Make().String()
	s.backend.mux.Lock()
	s.backend.conversations[id] = c
	s.backend.order = append(s.backend.order, id)
	s.backend.mux.Unlock()

	jww.DEBUG.Printf("[MEMORY] %s created conversation %s with %d "+
		"participants", s.caller, id, len(c.participants))
	return id, nil
}

// lookup returns the conversation if the caller participates in it. The
// backend lock must be held.
func (s *memorySession) lookup(method, id string) (*memoryConversation, error) {
	c, ok := s.backend.conversations[id]
	if !ok {
		return nil, newError(method, conversationMissing, 0)
	}
	if _, ok = c.participants[s.caller]; !ok {
		return nil, newError(method, notParticipantMsg, 0)
	}
	return c, nil
}

// GetMessages returns a copy of the conversation's messages in insertion
// order.
func (s *memorySession) GetMessages(
	_ context.Context, conversationID string) ([]Message, error) {
	if err := s.authorize(methodGetMessages); err != nil {
		return nil, err
	}

	s.backend.mux.RLock()
	defer s.backend.mux.RUnlock()

	c, err := s.lookup(methodGetMessages, conversationID)
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return msgs, nil
}

// SendMessage stores local attachments and appends the message.
func (s *memorySession) SendMessage(
	_ context.Context, conversationID string, msg Message) error {
	if err := s.authorize(methodSendMessage); err != nil {
		return err
	}
	if msg.Sender != s.caller {
		return newError(methodSendMessage, senderMismatchMsg, 0)
	}
	for _, a := range msg.Attachments {
		if a.Blob == nil {
			return newError(methodSendMessage, missingBlobMsg, 0)
		}
	}

	s.backend.mux.RLock()
	_, err := s.lookup(methodSendMessage, conversationID)
	s.backend.mux.RUnlock()
	if err != nil {
		return err
	}

	if err = uploadLocalBlobs(msg.Attachments, s.backend.store); err != nil {
		return err
	}

	// Store what a remote backend would return: resolved references only
	stored := msg
	stored.Attachments = make([]Attachment, len(msg.Attachments))
	for i, a := range msg.Attachments {
		stored.Attachments[i] = Attachment{
			Blob: FromURL(a.Blob.DirectURL()),
			Type: a.Type,
		}
	}

	s.backend.mux.Lock()
	c := s.backend.conversations[conversationID]
	c.messages = append(c.messages, stored)
	s.backend.mux.Unlock()
	return nil
}

// store keeps the blob's content and resolves its URL.
func (m *Memory) store(b *Blob) error {
	b.ReportProgress(0)
	m.mux.Lock()
	m.blobs[b.Hash()] = b.Bytes()
	m.mux.Unlock()
	b.Resolve(memoryBlobPrefix + b.Hash())
	b.ReportProgress(100)
	return nil
}

// GetUserProfile returns the user's profile or nil.
func (s *memorySession) GetUserProfile(
	_ context.Context, user Identity) (*UserProfile, error) {
	if err := s.authorize(methodGetUserProfile); err != nil {
		return nil, err
	}

	s.backend.mux.RLock()
	defer s.backend.mux.RUnlock()

	profile, ok := s.backend.profiles[user]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// GetCallerUserProfile returns the caller's profile or nil.
func (s *memorySession) GetCallerUserProfile(ctx context.Context) (*UserProfile, error) {
	if err := s.authorize(methodGetCallerUserProfile); err != nil {
		return nil, err
	}
	return s.GetUserProfile(ctx, s.caller)
}

// SaveCallerUserProfile stores the profile after checking that no other
// identity holds the phone number.
func (s *memorySession) SaveCallerUserProfile(
	_ context.Context, profile UserProfile) error {
	if err := s.authorize(methodSaveCallerUserProfile); err != nil {
		return err
	}
	if strings.TrimSpace(profile.FullName) == "" {
		return newError(methodSaveCallerUserProfile, emptyNameMsg, 0)
	}

	s.backend.mux.RLock()
	taken := s.backend.phoneTakenBy(profile.PhoneNumber, s.caller)
	s.backend.mux.RUnlock()
	if taken {
		return newError(methodSaveCallerUserProfile, phoneTakenMsg, 0)
	}

	if pic := profile.ProfilePicture; pic != nil {
		if pic.NeedsUpload() {
			if err := s.backend.store(pic); err != nil {
				return err
			}
		}
		profile.ProfilePicture = FromURL(pic.DirectURL())
	}

	s.backend.mux.Lock()
	s.backend.profiles[s.caller] = profile
	s.backend.mux.Unlock()
	return nil
}

// phoneTakenBy returns true if an identity other than owner registered the
// number. The backend lock must be held.
func (m *Memory) phoneTakenBy(phoneNumber string, owner Identity) bool {
	for identity, p := range m.profiles {
		if identity != owner && p.PhoneNumber == phoneNumber {
			return true
		}
	}
	return false
}

// GetMatchingContacts returns the profiles of other identities registered
// under the numbers, in the order the numbers are given.
func (s *memorySession) GetMatchingContacts(
	_ context.Context, phoneNumbers []string) ([]UserProfile, error) {
	if err := s.authorize(methodGetMatchingContacts); err != nil {
		return nil, err
	}

	s.backend.mux.RLock()
	defer s.backend.mux.RUnlock()

	byPhone := make(map[string]UserProfile, len(s.backend.profiles))
	for identity, p := range s.backend.profiles {
		if identity != s.caller {
			byPhone[p.PhoneNumber] = p
		}
	}

	matched := make([]UserProfile, 0)
	for _, number := range phoneNumbers {
		if p, ok := byPhone[number]; ok {
			matched = append(matched, p)
			delete(byPhone, number)
		}
	}
	return matched, nil
}

// CheckPhoneNumberAvailability returns true unless another identity holds the
// number.
func (s *memorySession) CheckPhoneNumberAvailability(
	_ context.Context, phoneNumber string) (bool, error) {
	if err := s.authorize(methodCheckPhoneAvailability); err != nil {
		return false, err
	}
	s.backend.mux.RLock()
	defer s.backend.mux.RUnlock()
	return !s.backend.phoneTakenBy(phoneNumber, s.caller), nil
}
