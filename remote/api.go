////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package remote defines the call contract of the messaging backend and the
// transports that implement it.
//
// The backend is an actor-style service: every operation is a typed method
// call made on behalf of the authenticated caller. The client never sees the
// backend's storage; conversations exist only as the ids it returns and the
// messages retrievable under them.
package remote

import (
	"context"
	"strings"
)

// Identity is the opaque principal text of a user. The zero value is the
// anonymous identity.
type Identity string

// String returns the principal text.
func (i Identity) String() string {
	return string(i)
}

// IsAnonymous returns true for the empty identity and the anonymous
// principal.
func (i Identity) IsAnonymous() bool {
	trimmed := Identity(strings.TrimSpace(string(i)))
	return trimmed == "" || trimmed == AnonymousPrincipal
}

// AttachmentType denotes how an attachment is rendered.
type AttachmentType string

const (
	Photo AttachmentType = "photo"
	Video AttachmentType = "video"
)

// Attachment is a media blob attached to a Message.
type Attachment struct {
	Blob *Blob          `json:"blob"`
	Type AttachmentType `json:"attachmentType"`
}

// Message is a single chat message. Messages are immutable once sent and are
// kept in the order the backend returns them.
type Message struct {
	Sender Identity `json:"sender"`
	Text   string   `json:"text"`

	// Nanoseconds since the Unix epoch
	Timestamp int64 `json:"timestamp"`

	Attachments []Attachment `json:"attachments"`
}

// UserProfile is the public profile of one identity.
type UserProfile struct {
	FullName       string `json:"fullName"`
	PhoneNumber    string `json:"phoneNumber"`
	ProfilePicture *Blob  `json:"profilePicture,omitempty"`
}

// API is the call contract of the messaging backend. All calls are made as the
// caller the implementation was authenticated with.
type API interface {
	// GetUserConversations returns the ids of every conversation the caller
	// participates in.
	GetUserConversations(ctx context.Context) ([]string, error)

	// CreateConversation creates a conversation between the caller and the
	// given participants and returns its id.
	CreateConversation(ctx context.Context, participants []Identity) (string, error)

	// GetMessages returns the messages of a conversation in insertion order.
	GetMessages(ctx context.Context, conversationID string) ([]Message, error)

	// SendMessage appends a message to a conversation. Local attachment
	// blobs are uploaded first, one at a time.
	SendMessage(ctx context.Context, conversationID string, msg Message) error

	// GetUserProfile returns the profile of the identity or nil if it has
	// none.
	GetUserProfile(ctx context.Context, user Identity) (*UserProfile, error)

	// GetCallerUserProfile returns the caller's own profile or nil.
	GetCallerUserProfile(ctx context.Context) (*UserProfile, error)

	// SaveCallerUserProfile creates or replaces the caller's profile.
	SaveCallerUserProfile(ctx context.Context, profile UserProfile) error

	// GetMatchingContacts returns the profiles registered under any of the
	// phone numbers.
	GetMatchingContacts(ctx context.Context, phoneNumbers []string) ([]UserProfile, error)

	// CheckPhoneNumberAvailability returns true if no other identity has
	// registered the phone number.
	CheckPhoneNumberAvailability(ctx context.Context, phoneNumber string) (bool, error)
}
