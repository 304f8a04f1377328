////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package share

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tests that share text is encoded like a URI component.
func TestBuildWhatsAppURL(t *testing.T) {
	tests := map[string]string{
		"hello":              "hello",
		"hello world":        "hello%20world",
		"a+b=c&d":            "a%2Bb%3Dc%26d",
		"it's (fine)!":       "it's%20(fine)!",
		"line\nbreak":        "line%0Abreak",
		"café":               "caf%C3%A9",
		"~_.-*":              "~_.-*",
		"https://x.y/?q=1#f": "https%3A%2F%2Fx.y%2F%3Fq%3D1%23f",
	}

	for text, encoded := range tests {
		require.Equal(t, whatsAppSendURL+encoded, BuildWhatsAppURL(text), text)
	}
}

// Tests that the writer opener prints the URL.
func TestWriterOpener(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriterOpener{W: &buf}.Open("https://example.com"))
	require.Equal(t, "Share on WhatsApp: https://example.com\n", buf.String())
}
