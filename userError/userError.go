////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package userError turns backend and transport failures into the strings
// shown to the person using the client. Errors are classified by type where
// possible and otherwise by substring of the backend message.
package userError

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Category is the kind of failure as seen by the user.
type Category uint8

const (
	Unknown Category = iota
	Unauthorized
	NotFound
	Validation
	Network
)

// String returns a human-readable name for the Category.
func (c Category) String() string {
	switch c {
	case Unknown:
		return "Unknown"
	case Unauthorized:
		return "Unauthorized"
	case NotFound:
		return "NotFound"
	case Validation:
		return "Validation"
	case Network:
		return "Network"
	default:
		return "INVALID CATEGORY"
	}
}

// Substrings of backend messages that identify each category. Checked in
// order, so the unauthorized marker wins over anything else in the message.
var markers = []struct {
	substr   string
	category Category
}{
	{"Unauthorized", Unauthorized},
	{"not found", NotFound},
	{"already registered", Validation},
	{"Invalid", Validation},
	{"invalid", Validation},
	{"required", Validation},
}

// Classify returns the category of the error. A nil error is Unknown.
func Classify(err error) Category {
	if err == nil {
		return Unknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Network
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Network
	}

	// Backend wording wins over the status code.
	msg := err.Error()
	for _, m := range markers {
		if strings.Contains(msg, m.substr) {
			return m.category
		}
	}
	if strings.Contains(strings.ToLower(msg), "not found") {
		return NotFound
	}

	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) {
		switch code := remoteErr.StatusCode; {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return Unauthorized
		case code == http.StatusNotFound:
			return NotFound
		case code >= http.StatusInternalServerError:
			return Network
		}
	}

	return Unknown
}

// Messages are the user-facing strings one action shows per category. Empty
// NotFound and Validation strings surface the backend's own message, which
// is already phrased for users. Empty Unauthorized and Network strings fall
// back to Fallback.
type Messages struct {
	Unauthorized string
	NotFound     string
	Validation   string
	Network      string
	Fallback     string
}

// DefaultMessages returns the messages used by an action whose generic
// failure reads fallback, e.g. "Failed to send message".
func DefaultMessages(fallback string) Messages {
	return Messages{
		Unauthorized: "Please sign in to continue",
		Network:      fallback + ". Please check your connection and try again.",
		Fallback:     fallback + ". Please try again.",
	}
}

// Error is an error with a user-facing message. The underlying error is kept
// for logging and unwrapping.
type Error struct {
	Category Category
	Message  string
	cause    error
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error for github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.cause
}

// New returns a user-facing error with no underlying cause.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Remap classifies the error and replaces its message with the configured
// one. Errors that are already user-facing are returned unchanged.
func (m Messages) Remap(err error) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	category := Classify(err)
	message := m.pick(category, err)
	jww.DEBUG.Printf("[USERERROR] %s error remapped to %q: %+v", category,
		message, err)

	return &Error{Category: category, Message: message, cause: err}
}

func (m Messages) pick(category Category, err error) string {
	var chosen string
	switch category {
	case Unauthorized:
		chosen = m.Unauthorized
	case NotFound:
		chosen = m.NotFound
		if chosen == "" {
			chosen = backendMessage(err)
		}
	case Validation:
		chosen = m.Validation
		if chosen == "" {
			chosen = backendMessage(err)
		}
	case Network:
		chosen = m.Network
	}

	if chosen == "" {
		chosen = m.Fallback
	}
	return chosen
}

// backendMessage returns the message the backend rejected a call with, or
// the full error text when the error did not come from the backend.
func backendMessage(err error) string {
	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	return err.Error()
}
