////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"fmt"
	"net/http"
	"strings"
)

// Messages the backend rejects calls with. Transports and the in-memory
// backend use the same wording so callers can classify errors by substring.
const (
	unauthorizedMsg     = "Unauthorized"
	anonymousCallerMsg  = "Unauthorized: anonymous callers are not allowed"
	notParticipantMsg   = "Unauthorized: caller is not a participant of this conversation"
	senderMismatchMsg   = "Unauthorized: message sender does not match the caller"
	conversationMissing = "Conversation not found"
	phoneTakenMsg       = "Phone number already registered"
	emptyNameMsg        = "Invalid profile: full name is required"
	noParticipantsMsg   = "Invalid conversation: at least one participant is required"
	missingBlobMsg      = "Invalid message: attachment has no content"
)

// Error is a rejection returned by the backend for a single call.
type Error struct {
	// Method is the backend operation that failed.
	Method string

	// Message is the backend's description of the failure.
	Message string

	// StatusCode is the HTTP status of the response, or 0 when the error did
	// not come over HTTP.
	StatusCode int
}

// Error returns the backend message prefixed by the method name.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Method, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// newError builds an Error, making sure 401 responses mention Unauthorized so
// that substring classification finds them.
func newError(method, message string, status int) *Error {
	if status == http.StatusUnauthorized &&
		!strings.Contains(message, unauthorizedMsg) {
		message = unauthorizedMsg + ": " + message
	}
	return &Error{Method: method, Message: message, StatusCode: status}
}
