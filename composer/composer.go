////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package composer builds and sends outgoing messages for one conversation.
//
// Attachments are read and uploaded one after the other inside a single
// submit, so a message with n attachments takes n uploads before it is sent.
// The timeline is not updated with the sent message; its cache key is
// invalidated and the next fetch shows it.
package composer

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/share"
	"github.com/caffeinepub/vibechat/userError"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"
)

// Submit errors and notices.
var (
	ErrSendInProgress = errors.New("A message is already being sent")
	ErrShareNeedsText = errors.New(
		"WhatsApp sharing requires text. Please add a message.")
)

// ShareMediaNotice is returned in Result.Notice when attachments are sent
// with WhatsApp sharing on.
const ShareMediaNotice = "WhatsApp sharing from Vibechat supports text " +
	"only. Media will be sent to Vibechat only."

// sendMessages are the user-facing failures of sending a message.
func sendMessages() userError.Messages {
	msgs := userError.DefaultMessages("Failed to send message")
	msgs.Unauthorized = "Please sign in to send messages"
	return msgs
}

// ProgressCallback receives the upload percentage of the attachment being
// uploaded.
type ProgressCallback func(percent int)

// Result describes a completed Submit.
type Result struct {
	// Sent is false when there was nothing to send.
	Sent bool

	// Shared is true when the share URL was opened.
	Shared bool

	// Notice is an informational message for the user, if any.
	Notice string
}

type outgoing struct {
	conversationID string
	message        remote.Message
}

// Composer holds the draft of one conversation and sends it.
type Composer struct {
	caller         remote.Identity
	conversationID string
	send           *query.Mutation[outgoing, struct{}]
	opener         share.Opener

	text            string
	files           []File
	shareToWhatsApp bool
	progress        int
	onProgress      ProgressCallback
	mux             sync.Mutex

	sending uint32
}

// New returns an empty composer that sends as the caller to the conversation.
// The opener may be nil, in which case WhatsApp sharing is unavailable.
func New(api remote.API, cache *query.Cache, caller remote.Identity,
	conversationID string, opener share.Opener) *Composer {
	send := func(ctx context.Context, o outgoing) (struct{}, error) {
		return struct{}{}, api.SendMessage(ctx, o.conversationID, o.message)
	}

	return &Composer{
		caller:         caller,
		conversationID: conversationID,
		opener:         opener,
		send: query.NewMutation(cache, send,
			query.MutationOptions[outgoing, struct{}]{
				Name: "sendMessage",
				Invalidates: func(o outgoing, _ struct{}) []query.Key {
					return []query.Key{query.MessagesKey(o.conversationID)}
				},
				Messages: sendMessages(),
			}),
	}
}

// SetText replaces the draft text.
func (c *Composer) SetText(text string) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.text = text
}

// Text returns the draft text.
func (c *Composer) Text() string {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.text
}

// AddFiles attaches the image and video files. Other files are dropped and
// ErrUnsupportedFiles is returned, but the accepted ones are still attached.
func (c *Composer) AddFiles(files ...File) error {
	accepted := make([]File, 0, len(files))
	for _, f := range files {
		if f.IsImage() || f.IsVideo() {
			accepted = append(accepted, f)
		}
	}

	c.mux.Lock()
	c.files = append(c.files, accepted...)
	c.mux.Unlock()

	if len(accepted) != len(files) {
		return ErrUnsupportedFiles
	}
	return nil
}

// RemoveFile detaches the file at the index.
func (c *Composer) RemoveFile(index int) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if index < 0 || index >= len(c.files) {
		return
	}
	c.files = append(c.files[:index:index], c.files[index+1:]...)
}

// Files returns the attached files.
func (c *Composer) Files() []File {
	c.mux.Lock()
	defer c.mux.Unlock()
	files := make([]File, len(c.files))
	copy(files, c.files)
	return files
}

// SetShareToWhatsApp toggles sharing the text on WhatsApp after sending.
func (c *Composer) SetShareToWhatsApp(enabled bool) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.shareToWhatsApp = enabled
}

// OnProgress sets the callback told about upload progress.
func (c *Composer) OnProgress(cb ProgressCallback) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.onProgress = cb
}

// Progress returns the upload percentage of the attachment being uploaded.
func (c *Composer) Progress() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.progress
}

// Sending reports whether a submit is in flight.
func (c *Composer) Sending() bool {
	return atomic.LoadUint32(&c.sending) == 1
}

func (c *Composer) setProgress(percent int) {
	c.mux.Lock()
	c.progress = percent
	cb := c.onProgress
	c.mux.Unlock()

	if cb != nil {
		cb(percent)
	}
}

// Submit sends the draft. An empty draft sends nothing. On success the draft
// is cleared and, if enabled, the text is shared on WhatsApp; on failure the
// draft is left as it was and the error is user-facing.
func (c *Composer) Submit(ctx context.Context) (Result, error) {
	c.mux.Lock()
	text := strings.TrimSpace(c.text)
	files := make([]File, len(c.files))
	copy(files, c.files)
	shareText := c.shareToWhatsApp && c.opener != nil
	c.mux.Unlock()

	if text == "" && len(files) == 0 {
		return Result{}, nil
	}
	if shareText && text == "" {
		return Result{}, ErrShareNeedsText
	}

	if !atomic.CompareAndSwapUint32(&c.sending, 0, 1) {
		return Result{}, ErrSendInProgress
	}
	defer atomic.StoreUint32(&c.sending, 0)

	var result Result
	if shareText && len(files) > 0 {
		result.Notice = ShareMediaNotice
	}

	attachments := make([]remote.Attachment, 0, len(files))
	for _, f := range files {
		data, err := f.ReadBytes()
		if err != nil {
			return result, err
		}
		attachments = append(attachments, remote.Attachment{
			Blob: remote.FromBytes(data).WithUploadProgress(c.setProgress),
			Type: f.AttachmentType(),
		})
	}

	msg := remote.Message{
		Sender:      c.caller,
		Text:        text,
		Timestamp:   netTime.Now().UnixNano(),
		Attachments: attachments,
	}
	if _, err := c.send.Do(ctx, outgoing{c.conversationID, msg}); err != nil {
		if errors.Is(err, query.ErrPending) {
			return result, ErrSendInProgress
		}
		return result, err
	}
	result.Sent = true
	jww.INFO.Printf("[COMPOSER] Sent message with %d attachments to %s",
		len(attachments), c.conversationID)

	c.mux.Lock()
	c.text = ""
	c.files = nil
	c.progress = 0
	c.mux.Unlock()

	if shareText {
		if err := c.opener.Open(share.BuildWhatsAppURL(text)); err != nil {
			jww.WARN.Printf("[COMPOSER] WhatsApp share failed: %+v", err)
		} else {
			result.Shared = true
		}
	}

	return result, nil
}
