////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package profile reads and saves user profiles and checks phone numbers
// before registration.
package profile

import (
	"context"
	"strings"
	"sync"

	"github.com/caffeinepub/vibechat/composer"
	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/userError"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/ttacon/libphonenumber"
)

// minPhoneLength is the shortest phone number accepted, in characters.
const minPhoneLength = 10

const (
	emptyPhoneMsg    = "Please enter your phone number"
	invalidPhoneMsg  = "Please enter a valid phone number"
	phoneTakenMsg    = "This phone number is already registered"
	verifyFailedMsg  = "Failed to verify phone number"
	emptyNameMsg     = "Please enter your name"
	phoneRequiredMsg = "Phone number is required"
)

func saveMessages() userError.Messages {
	return userError.Messages{
		Unauthorized: "Please sign in to save your profile",
		Network:      "Failed to save profile. Please check your connection and try again.",
		Fallback:     "Failed to save profile",
	}
}

// Draft is a profile being edited. A nil Picture keeps the current picture.
type Draft struct {
	FullName    string
	PhoneNumber string
	Picture     *composer.File
}

// Manager reads and saves the caller's profile and looks up other users.
type Manager struct {
	backend query.Backend
	caller  remote.Identity
	save    *query.Mutation[remote.UserProfile, struct{}]

	onProgress remote.ProgressCallback
	mux        sync.Mutex
}

// NewManager returns a Manager for the caller on the backend.
func NewManager(backend query.Backend, caller remote.Identity) *Manager {
	save := func(ctx context.Context, p remote.UserProfile) (struct{}, error) {
		return struct{}{}, backend.API.SaveCallerUserProfile(ctx, p)
	}

	return &Manager{
		backend: backend,
		caller:  caller,
		save: query.NewMutation(backend.Cache, save,
			query.MutationOptions[remote.UserProfile, struct{}]{
				Name: "saveCallerUserProfile",
				Invalidates: func(remote.UserProfile, struct{}) []query.Key {
					return []query.Key{
						query.CallerUserProfileKey(),
						query.UserProfileKey(caller.String()),
					}
				},
				Messages: saveMessages(),
			}),
	}
}

// Caller returns the caller's profile, or nil if they have not created one.
func (m *Manager) Caller(ctx context.Context) (*remote.UserProfile, error) {
	return m.backend.CallerUserProfile().Read(ctx)
}

// Lookup returns the identity's profile, or nil if it has none.
func (m *Manager) Lookup(ctx context.Context, identity remote.Identity) (
	*remote.UserProfile, error) {
	return m.backend.UserProfile(identity).Read(ctx)
}

// OnProgress sets the callback told about the picture upload.
func (m *Manager) OnProgress(cb remote.ProgressCallback) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.onProgress = cb
}

func (m *Manager) reportProgress(percentage int) {
	m.mux.Lock()
	cb := m.onProgress
	m.mux.Unlock()
	if cb != nil {
		cb(percentage)
	}
}

// CheckPhone verifies that the phone number looks valid and that no other
// user registered it. Numbers in international format are checked against
// the numbering plan of their country.
func (m *Manager) CheckPhone(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return userError.New(userError.Validation, emptyPhoneMsg)
	}
	if len(phone) < minPhoneLength {
		return userError.New(userError.Validation, invalidPhoneMsg)
	}
	if strings.HasPrefix(phone, "+") {
		num, err := libphonenumber.Parse(phone, "")
		if err != nil || !libphonenumber.IsValidNumber(num) {
			jww.DEBUG.Printf("[PROFILE] Rejected phone number %q: %v", phone, err)
			return userError.New(userError.Validation, invalidPhoneMsg)
		}
	}

	available, err := m.backend.API.CheckPhoneNumberAvailability(ctx, phone)
	if err != nil {
		jww.ERROR.Printf("[PROFILE] Failed to check phone availability: %+v", err)
		return userError.New(userError.Classify(err), verifyFailedMsg)
	}
	if !available {
		return userError.New(userError.Validation, phoneTakenMsg)
	}
	return nil
}

// Save validates the draft and stores it as the caller's profile. A chosen
// picture is scaled down and uploaded with progress; without one the
// current picture is kept.
func (m *Manager) Save(ctx context.Context, d Draft) error {
	name := strings.TrimSpace(d.FullName)
	if name == "" {
		return userError.New(userError.Validation, emptyNameMsg)
	}
	phone := strings.TrimSpace(d.PhoneNumber)
	if phone == "" {
		return userError.New(userError.Validation, phoneRequiredMsg)
	}

	p := remote.UserProfile{FullName: name, PhoneNumber: phone}
	if d.Picture != nil {
		data, err := readPicture(*d.Picture)
		if err != nil {
			if err == ErrInvalidPicture || err == ErrPictureTooLarge {
				return userError.New(userError.Validation, err.Error())
			}
			return saveMessages().Remap(err)
		}
		p.ProfilePicture = remote.FromBytes(data).
			WithUploadProgress(m.reportProgress)
	} else {
		current, err := m.Caller(ctx)
		if err != nil {
			return saveMessages().Remap(err)
		}
		if current != nil {
			p.ProfilePicture = current.ProfilePicture
		}
	}

	if _, err := m.save.Do(ctx, p); err != nil {
		m.reportProgress(0)
		return err
	}

	jww.INFO.Printf("[PROFILE] Saved profile of %s", m.caller)
	m.reportProgress(0)
	return nil
}

// Pending reports whether a save is in flight.
func (m *Manager) Pending() bool {
	return m.save.Pending()
}
