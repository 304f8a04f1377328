////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package settings keeps the device-local preferences of the client. Nothing
// here is sent to the backend.
package settings

import (
	"encoding/json"
	"sync"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/storage/versioned"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"
	"gitlab.com/xx_network/primitives/netTime"
)

const (
	settingsPrefix = "settings"

	onboardingKey         = "vibechat_onboarding_dismissed"
	onboardingVersion     = 0
	installCalloutKey     = "vibechat_pwa_install_callout_hidden"
	installCalloutVersion = 0
)

// Settings are the stored preferences. Missing values read as false.
type Settings struct {
	// OnboardingSeen is set once the welcome screen was dismissed.
	OnboardingSeen bool `json:"onboardingSeen"`

	// InstallCalloutHidden is set when the user hid the install prompt.
	InstallCalloutHidden bool `json:"installCalloutHidden"`
}

// Store reads and writes Settings.
type Store struct {
	kv  *versioned.KV
	mux sync.Mutex
}

// NewStore returns the caller's Store on the key-value store. Callers sharing
// one key-value store keep separate settings.
func NewStore(kv ekv.KeyValue, caller remote.Identity) *Store {
	return &Store{kv: versioned.NewKV(kv).Prefix(settingsPrefix).
		Prefix(versioned.MakeIdentityPrefix(caller.String()))}
}

// Persistent reports whether the settings outlive the process.
func (s *Store) Persistent() bool {
	return !s.kv.IsMemStore()
}

// Load returns the stored settings. Flags that were never written are false.
func (s *Store) Load() (Settings, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	var st Settings
	var err error
	if st.OnboardingSeen, err = s.loadFlag(onboardingKey, onboardingVersion); err != nil {
		return Settings{}, err
	}
	if st.InstallCalloutHidden, err = s.loadFlag(
		installCalloutKey, installCalloutVersion); err != nil {
		return Settings{}, err
	}
	return st, nil
}

// Save stores every flag of the settings.
func (s *Store) Save(st Settings) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.saveFlag(onboardingKey, onboardingVersion,
		st.OnboardingSeen); err != nil {
		return err
	}
	return s.saveFlag(installCalloutKey, installCalloutVersion,
		st.InstallCalloutHidden)
}

// MarkOnboardingSeen records that the welcome screen was dismissed.
func (s *Store) MarkOnboardingSeen() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.saveFlag(onboardingKey, onboardingVersion, true)
}

// SetInstallCalloutHidden hides or shows the install prompt. Showing it
// removes the stored flag.
func (s *Store) SetInstallCalloutHidden(hidden bool) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.saveFlag(installCalloutKey, installCalloutVersion, hidden)
}

// ClearInstallCalloutHidden shows the install prompt again.
func (s *Store) ClearInstallCalloutHidden() error {
	return s.SetInstallCalloutHidden(false)
}

func (s *Store) loadFlag(key string, version uint64) (bool, error) {
	obj, err := s.kv.Get(key, version)
	if err != nil {
		if !s.kv.Exists(err) {
			return false, nil
		}
		return false, errors.WithMessagef(err, "failed to load %s", key)
	}

	var value bool
	if err = json.Unmarshal(obj.Data, &value); err != nil {
		return false, errors.Wrapf(err, "failed to decode %s", key)
	}
	return value, nil
}

// saveFlag stores true values and deletes false ones, so an unset flag and a
// false one look the same.
func (s *Store) saveFlag(key string, version uint64, value bool) error {
	if !value {
		err := s.kv.Delete(key, version)
		if err != nil && s.kv.Exists(err) {
			return errors.WithMessagef(err, "failed to clear %s", key)
		}
		jww.DEBUG.Printf("[SETTINGS] Cleared %s", s.kv.GetFullKey(key, version))
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", key)
	}
	obj := &versioned.Object{
		Version:   version,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err = s.kv.Set(key, obj); err != nil {
		return errors.WithMessagef(err, "failed to store %s", key)
	}
	jww.DEBUG.Printf("[SETTINGS] Set %s", s.kv.GetFullKey(key, version))
	return nil
}
