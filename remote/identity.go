////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/pkg/errors"
)

const (
	// maxPrincipalBytes is the longest principal the backend issues.
	maxPrincipalBytes = 29

	// principalGroupLen is the number of characters between dashes in the
	// textual form of a principal.
	principalGroupLen = 5

	// AnonymousPrincipal is the text of the principal the backend assigns to
	// unauthenticated callers.
	AnonymousPrincipal Identity = "2vxsx-fae"
)

// ErrMalformedIdentity is returned by ParseIdentity for text that is not a
// well-formed principal.
var ErrMalformedIdentity = errors.New("malformed principal text")

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ParseIdentity checks that the text is a well-formed principal: lowercase
// base32 in dash-separated groups of five, encoding a CRC-32 checksum followed
// by at most 29 bytes.
func ParseIdentity(text string) (Identity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.WithMessage(ErrMalformedIdentity, "empty principal")
	}
	if text != strings.ToLower(text) {
		return "", errors.WithMessagef(ErrMalformedIdentity,
			"%q is not lowercase", text)
	}

	decoded, err := principalEncoding.DecodeString(
		strings.ToUpper(strings.ReplaceAll(text, "-", "")))
	if err != nil {
		return "", errors.WithMessagef(ErrMalformedIdentity, "%q: %v", text, err)
	}
	if len(decoded) < crc32.Size || len(decoded) > crc32.Size+maxPrincipalBytes {
		return "", errors.WithMessagef(ErrMalformedIdentity,
			"%q decodes to %d bytes", text, len(decoded))
	}

	checksum := binary.BigEndian.Uint32(decoded[:crc32.Size])
	if crc32.ChecksumIEEE(decoded[crc32.Size:]) != checksum {
		return "", errors.WithMessagef(ErrMalformedIdentity,
			"%q has a bad checksum", text)
	}

	if formatPrincipal(decoded) != text {
		return "", errors.WithMessagef(ErrMalformedIdentity,
			"%q is not in canonical form", text)
	}

	return Identity(text), nil
}

// formatPrincipal returns the canonical text of checksummed principal bytes.
func formatPrincipal(checksummed []byte) string {
	encoded := strings.ToLower(principalEncoding.EncodeToString(checksummed))

	var sb strings.Builder
	for i := 0; i < len(encoded); i += principalGroupLen {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + principalGroupLen
		if end > len(encoded) {
			end = len(encoded)
		}
		sb.WriteString(encoded[i:end])
	}
	return sb.String()
}
