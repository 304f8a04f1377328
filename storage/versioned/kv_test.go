////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/elixxir/ekv"
)

// Getting a key that was never set returns an error that Exists reports as
// missing.
func TestKV_Get_Missing(t *testing.T) {
	vkv := NewKV(ekv.MakeMemstore())

	result, err := vkv.Get("onboarding", 0)
	require.Error(t, err)
	require.Nil(t, result)
	require.False(t, vkv.Exists(err))
}

// Tests that Set then Get returns the stored data and that the version is part
// of the key.
func TestKV_SetGet(t *testing.T) {
	vkv := NewKV(ekv.MakeMemstore())
	original := &Object{
		Version:   1,
		Timestamp: time.Now().Round(0),
		Data:      []byte("seen"),
	}

	require.NoError(t, vkv.Set("onboarding", original))

	result, err := vkv.Get("onboarding", 1)
	require.NoError(t, err)
	require.Equal(t, original.Data, result.Data)
	require.Equal(t, original.Version, result.Version)

	_, err = vkv.Get("onboarding", 0)
	require.Error(t, err)
}

// Tests that Delete removes the key.
func TestKV_Delete(t *testing.T) {
	vkv := NewKV(ekv.MakeMemstore())
	require.NoError(t, vkv.Set("k", &Object{Data: []byte("v")}))
	require.NoError(t, vkv.Delete("k", 0))

	_, err := vkv.Get("k", 0)
	require.False(t, vkv.Exists(err))
}

// Tests that prefixed KVs do not see each other's keys but share the backing
// store.
func TestKV_Prefix(t *testing.T) {
	vkv := NewKV(ekv.MakeMemstore())
	alice := vkv.Prefix(MakeIdentityPrefix("alice"))
	bob := vkv.Prefix(MakeIdentityPrefix("bob"))

	require.NoError(t, alice.Set("flag", &Object{Data: []byte("a")}))

	_, err := bob.Get("flag", 0)
	require.Error(t, err)

	require.Equal(t, "Identity:alice/flag_0", alice.GetFullKey("flag", 0))
	require.True(t, alice.IsMemStore())
}

// Tests that Set rejects a nil object.
func TestKV_Set_Nil(t *testing.T) {
	vkv := NewKV(ekv.MakeMemstore())
	require.Error(t, vkv.Set("k", nil))
}
