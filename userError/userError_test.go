////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package userError

import (
	"context"
	"net/http"
	"testing"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Tests that errors are classified by type, status and message.
func TestClassify(t *testing.T) {
	tests := []struct {
		err      error
		expected Category
	}{
		{nil, Unknown},
		{errors.New("sendMessage: Unauthorized: caller is not a participant"), Unauthorized},
		{&remote.Error{Method: "m", Message: "bad token", StatusCode: http.StatusUnauthorized}, Unauthorized},
		{errors.New("getMessages: Conversation not found"), NotFound},
		{&remote.Error{Method: "m", Message: "gone", StatusCode: http.StatusNotFound}, NotFound},
		{errors.New("Phone number already registered"), Validation},
		{errors.New("Invalid profile: full name is required"), Validation},
		{errors.WithMessage(context.DeadlineExceeded, "request failed"), Network},
		{&remote.Error{Method: "m", Message: "upstream", StatusCode: http.StatusBadGateway}, Network},
		{&remote.Error{Method: "m", Message: "Unauthorized: Only users can send messages", StatusCode: http.StatusInternalServerError}, Unauthorized},
		{&remote.Error{Method: "m", Message: "Unauthorized: Only users can send messages", StatusCode: http.StatusNotFound}, Unauthorized},
		{errors.New("something odd"), Unknown},
	}

	for i, tt := range tests {
		require.Equal(t, tt.expected, Classify(tt.err), "test %d: %v", i, tt.err)
	}
}

// Tests that an Unauthorized rejection surfaces the configured prompt rather
// than the backend message.
func TestMessages_Remap_Unauthorized(t *testing.T) {
	msgs := DefaultMessages("Failed to send message")
	msgs.Unauthorized = "Please sign in to send messages"

	raw := errors.New("sendMessage: Unauthorized: anonymous callers are not allowed")
	err := msgs.Remap(raw)

	require.EqualError(t, err, "Please sign in to send messages")
	require.ErrorIs(t, err, raw)

	var userErr *Error
	require.ErrorAs(t, err, &userErr)
	require.Equal(t, Unauthorized, userErr.Category)

	for _, code := range []int{http.StatusInternalServerError, http.StatusNotFound} {
		err = msgs.Remap(&remote.Error{Method: "sendMessage",
			Message: "Unauthorized: Only users can send messages", StatusCode: code})
		require.EqualError(t, err, "Please sign in to send messages", "status %d", code)
	}
}

// Tests that validation rejections surface the backend wording and unknown
// failures the generic message.
func TestMessages_Remap_Fallthrough(t *testing.T) {
	msgs := DefaultMessages("Failed to save profile")

	err := msgs.Remap(&remote.Error{
		Method: "saveCallerUserProfile", Message: "Phone number already registered"})
	require.EqualError(t, err, "Phone number already registered")

	err = msgs.Remap(errors.New("boom"))
	require.EqualError(t, err, "Failed to save profile. Please try again.")

	require.NoError(t, msgs.Remap(nil))

	already := New(Validation, "Please enter your name")
	require.Same(t, already, msgs.Remap(already))
}
