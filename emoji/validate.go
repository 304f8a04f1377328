////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package emoji validates reactions and finds or removes emojis in message
// text.
package emoji

import (
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidReaction is returned if the passed reaction string is an
	// invalid emoji.
	ErrInvalidReaction = errors.New(
		"The reaction is not valid, it must be a single emoji")
)

// ValidateReaction checks that the reaction only contains a single emoji.
// Returns ErrInvalidReaction if the emoji is invalid.
func ValidateReaction(reaction string) error {
	emojisList := gomoji.CollectAll(reaction)
	if len(emojisList) < 1 {
		// No emojis found
		return ErrInvalidReaction
	} else if len(emojisList) > 1 {
		// More than one emoji found
		return ErrInvalidReaction
	} else if emojisList[0].Character != reaction {
		// Non-emoji characters found alongside an emoji
		return ErrInvalidReaction
	}

	return nil
}

// Contains returns true if the text has at least one emoji.
func Contains(text string) bool {
	return gomoji.ContainsEmoji(text)
}

// Strip removes every emoji from the text and collapses the whitespace left
// behind.
func Strip(text string) string {
	return strings.Join(strings.Fields(gomoji.RemoveEmojis(text)), " ")
}
