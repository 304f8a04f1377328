////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package contacts

import (
	"context"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/userError"
	jww "github.com/spf13/jwalterweatherman"
)

// Result is the outcome of matching phone numbers.
type Result struct {
	// Matched are the profiles of registered users.
	Matched []remote.UserProfile

	// NotFound is the number of submitted numbers with no registered user.
	NotFound int
}

// Sync matches phone numbers against the backend.
type Sync struct {
	api remote.API
}

// NewSync returns a Sync on the API.
func NewSync(api remote.API) *Sync {
	return &Sync{api: api}
}

// Match returns the registered users among the numbers. No call is made for
// an empty list.
func (s *Sync) Match(ctx context.Context, numbers []string) (Result, error) {
	if len(numbers) == 0 {
		return Result{Matched: []remote.UserProfile{}}, nil
	}

	matched, err := s.api.GetMatchingContacts(ctx, numbers)
	if err != nil {
		msgs := userError.DefaultMessages("Failed to match contacts")
		msgs.Unauthorized = "Please sign in to find your contacts"
		return Result{}, msgs.Remap(err)
	}

	notFound := len(numbers) - len(matched)
	if notFound < 0 {
		notFound = 0
	}
	jww.INFO.Printf("[CONTACTS] %d of %d numbers are registered",
		len(matched), len(numbers))
	return Result{Matched: matched, NotFound: notFound}, nil
}

// MatchText extracts the numbers from pasted text and matches them.
func (s *Sync) MatchText(ctx context.Context, text string) (Result, error) {
	return s.Match(ctx, ExtractPhoneNumbers(text))
}
