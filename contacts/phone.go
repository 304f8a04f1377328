////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package contacts finds which of the user's phone contacts are registered
// with the backend.
package contacts

import (
	"strings"

	"github.com/golang-collections/collections/set"
)

// separators are removed from phone numbers during normalization.
const separators = "()-."

// NormalizePhoneNumber strips whitespace, parentheses, hyphens and dots from
// the number. A leading + is kept.
func NormalizePhoneNumber(phone string) string {
	return strings.Map(func(r rune) rune {
		if isSpace(r) || strings.ContainsRune(separators, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// isSpace matches the whitespace class of the pasted text.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x85, 0xA0, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A || r == 0x2028 || r == 0x2029 ||
		r == 0x202F || r == 0x205F || r == 0x3000 || r == 0x1680
}

// ExtractPhoneNumbers splits pasted text on commas and newlines and returns
// the normalized numbers, without empties or duplicates, in the order they
// first appear.
func ExtractPhoneNumbers(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return dedupe(parts)
}

// Contact is a record returned by a contact picker.
type Contact struct {
	Name []string
	Tel  []string
}

// ExtractFromContacts returns the normalized numbers of the contacts, without
// empties or duplicates, in the order they first appear.
func ExtractFromContacts(contacts []Contact) []string {
	numbers := make([]string, 0, len(contacts))
	for _, c := range contacts {
		numbers = append(numbers, c.Tel...)
	}
	return dedupe(numbers)
}

func dedupe(raw []string) []string {
	seen := set.New()
	numbers := make([]string, 0, len(raw))
	for _, r := range raw {
		n := NormalizePhoneNumber(r)
		if n == "" || seen.Has(n) {
			continue
		}
		seen.Insert(n)
		numbers = append(numbers, n)
	}
	return numbers
}
