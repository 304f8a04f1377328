////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package timeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/pkg/errors"
)

const (
	emptyTitle    = "No messages yet"
	emptySubtitle = "Send a message to start the conversation"
	loadingText   = "Loading messages..."
	loadFailed    = "Failed to load messages"

	// ownIndent pushes the caller's own bubbles to the right.
	ownIndent = "                "
)

// FormatTime returns the HH:MM local time of a nanosecond timestamp.
func FormatTime(timestamp int64) string {
	return time.Unix(0, timestamp).Format("15:04")
}

// Render writes the view as text: a placeholder while loading, the error if
// the fetch failed, or every bubble in order.
func Render(w io.Writer, v View) error {
	var err error
	switch {
	case v.Loading:
		_, err = fmt.Fprintln(w, loadingText)
	case v.Err != nil && len(v.Bubbles) == 0:
		_, err = fmt.Fprintf(w, "%s: %s\n", loadFailed, v.Err)
	case len(v.Bubbles) == 0:
		_, err = fmt.Fprintf(w, "%s\n%s\n", emptyTitle, emptySubtitle)
	default:
		err = RenderBubbles(w, v.Bubbles)
	}
	return errors.Wrap(err, "failed to render timeline")
}

// RenderBubbles writes the bubbles in order. Own bubbles are indented to the
// right.
func RenderBubbles(w io.Writer, bubbles []Bubble) error {
	for _, b := range bubbles {
		indent := ""
		if b.Own {
			indent = ownIndent
		}
		for _, l := range b.Lines() {
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, l); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lines returns the text lines of the bubble: the sender ("me" for own
// bubbles), the attachments, the message text and the time, in the order of
// the bubble layout.
func (b Bubble) Lines() []string {
	header := b.Sender.String()
	if b.Own {
		header = "me"
	}

	lines := []string{header + ":"}
	for _, a := range b.Attachments {
		lines = append(lines, fmt.Sprintf("[%s] %s",
			attachmentLabel(a.Type), attachmentURL(a)))
	}
	if b.Text != "" {
		lines = append(lines, strings.Split(b.Text, "\n")...)
	}
	return append(lines, FormatTime(b.Timestamp))
}

// attachmentLabel is the short name of an attachment type.
func attachmentLabel(t remote.AttachmentType) string {
	switch t {
	case remote.Photo:
		return "photo"
	case remote.Video:
		return "video"
	default:
		return string(t)
	}
}
