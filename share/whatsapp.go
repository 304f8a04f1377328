////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package share hands sent text to other messengers through their public share
// URLs. Sharing is best effort and text only.
package share

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// whatsAppSendURL is the WhatsApp Web share endpoint. The text is appended
// percent-encoded.
const whatsAppSendURL = "https://web.whatsapp.com/send?text="

// BuildWhatsAppURL returns the WhatsApp Web URL that opens a chat pre-filled
// with the text.
func BuildWhatsAppURL(text string) string {
	return whatsAppSendURL + encodeURIComponent(text)
}

// encodeURIComponent percent-encodes every byte except unreserved characters
// and !*'(), matching the encoding browsers apply to share URLs.
func encodeURIComponent(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnescaped(c) {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

func isUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// Opener opens a share URL outside the client.
type Opener interface {
	Open(url string) error
}

// WriterOpener prints share URLs for the user to open.
type WriterOpener struct {
	W io.Writer
}

// Open writes the URL on its own line.
func (o WriterOpener) Open(url string) error {
	_, err := fmt.Fprintf(o.W, "Share on WhatsApp: %s\n", url)
	return errors.Wrap(err, "failed to print share URL")
}

// BrowserOpener opens share URLs with the desktop's default handler.
type BrowserOpener struct{}

// Open starts the platform's URL handler and does not wait for it.
func (BrowserOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to open %s", url)
	}
	jww.DEBUG.Printf("[SHARE] Opened %s with %s", url, cmd.Path)
	go func() {
		if err := cmd.Wait(); err != nil {
			jww.WARN.Printf("[SHARE] URL handler exited: %+v", err)
		}
	}()
	return nil
}
