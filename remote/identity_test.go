////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Tests that canonical principals parse and everything else is rejected.
func TestParseIdentity(t *testing.T) {
	valid := []string{
		"aaaaa-aa",
		"2vxsx-fae",
		"ivwno-rqaae-bagba-faydq-qci",
		"  aaaaa-aa  ",
	}
	for _, text := range valid {
		id, err := ParseIdentity(text)
		require.NoError(t, err, text)
		require.NotEmpty(t, id)
	}

	invalid := []string{
		"",
		"   ",
		"AAAAA-AA",
		"aaaaa-ab",
		"aaaaaaa",
		"ivwno-rqaae-bagba-faydq-qcj",
		"not a principal",
		"alice",
	}
	for _, text := range invalid {
		_, err := ParseIdentity(text)
		require.Error(t, err, text)
		require.True(t, errors.Is(err, ErrMalformedIdentity), text)
	}
}

// Tests that the empty identity and the anonymous principal are anonymous.
func TestIdentity_IsAnonymous(t *testing.T) {
	require.True(t, Identity("").IsAnonymous())
	require.True(t, AnonymousPrincipal.IsAnonymous())
	require.False(t, Identity("aaaaa-aa").IsAnonymous())
}
