////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package settings

import (
	"testing"

	"github.com/caffeinepub/vibechat/storage/versioned"
	"github.com/stretchr/testify/require"
	"gitlab.com/elixxir/ekv"
)

// Tests that a new store reads as all false.
func TestStore_Load_Empty(t *testing.T) {
	s := NewStore(ekv.MakeMemstore(), "alice")
	st, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, Settings{}, st)
}

// Tests that saved settings load back and survive a new Store on the same
// backing store.
func TestStore_SaveLoad(t *testing.T) {
	mem := ekv.MakeMemstore()
	s := NewStore(mem, "alice")

	expected := Settings{OnboardingSeen: true, InstallCalloutHidden: true}
	require.NoError(t, s.Save(expected))

	st, err := NewStore(mem, "alice").Load()
	require.NoError(t, err)
	require.Equal(t, expected, st)

	require.NoError(t, s.Save(Settings{OnboardingSeen: true}))
	st, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, Settings{OnboardingSeen: true}, st)
}

// Tests the flag helpers, including that showing the install prompt removes
// the stored flag.
func TestStore_Helpers(t *testing.T) {
	mem := ekv.MakeMemstore()
	s := NewStore(mem, "alice")

	require.NoError(t, s.MarkOnboardingSeen())
	require.NoError(t, s.SetInstallCalloutHidden(true))
	st, err := s.Load()
	require.NoError(t, err)
	require.True(t, st.OnboardingSeen)
	require.True(t, st.InstallCalloutHidden)

	require.NoError(t, s.ClearInstallCalloutHidden())
	st, err = s.Load()
	require.NoError(t, err)
	require.False(t, st.InstallCalloutHidden)
	require.True(t, st.OnboardingSeen)

	kv := versioned.NewKV(mem).Prefix(settingsPrefix).
		Prefix(versioned.MakeIdentityPrefix("alice"))
	_, err = kv.Get(installCalloutKey, installCalloutVersion)
	require.Error(t, err)
	require.False(t, kv.Exists(err))

	// Clearing twice is fine
	require.NoError(t, s.ClearInstallCalloutHidden())
}

// Tests that identities sharing a backing store keep separate settings.
func TestStore_PerIdentity(t *testing.T) {
	mem := ekv.MakeMemstore()
	alice := NewStore(mem, "alice")
	require.NoError(t, alice.MarkOnboardingSeen())

	st, err := NewStore(mem, "bob").Load()
	require.NoError(t, err)
	require.False(t, st.OnboardingSeen)

	st, err = NewStore(mem, "alice").Load()
	require.NoError(t, err)
	require.True(t, st.OnboardingSeen)

	require.False(t, alice.Persistent())
	fs, err := ekv.NewFilestore(t.TempDir(), "password")
	require.NoError(t, err)
	require.True(t, NewStore(fs, "alice").Persistent())
}
