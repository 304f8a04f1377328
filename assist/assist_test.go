////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package assist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func texts(replies []Reply) []string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Text
	}
	return out
}

// Tests that each keyword rule picks its replies.
func TestSmartReplies(t *testing.T) {
	tests := []struct {
		message  string
		expected []string
	}{
		{"How are you?", questionRules[0].replies},
		{"What are you up to?", questionRules[1].replies},
		{"Where is it?", questionRules[2].replies},
		{"Is it raining?", genericQuestionReplies},
		{"Hey there", statementRules[0].replies},
		{"thanks a lot", statementRules[1].replies},
		{"So sorry about that", statementRules[2].replies},
		{"ok then", statementRules[3].replies},
		{"that was a nice show", statementRules[4].replies},
		{"the weather is bad", statementRules[5].replies},
		{"we should make plans", statementRules[6].replies},
		{"random text", fallbackReplies},
	}

	for _, tt := range tests {
		replies := SmartReplies(tt.message)
		require.Equal(t, tt.expected, texts(replies), tt.message)
		require.GreaterOrEqual(t, len(replies), 3)
		require.LessOrEqual(t, len(replies), 4)
		for i, r := range replies {
			require.Equal(t, string(rune('1'+i)), r.ID)
		}
	}
}

// Tests the rewrite heuristics of every mode.
func TestRewrite(t *testing.T) {
	long := "The meeting moved to Thursday afternoon because the room was " +
		"booked. Please bring the slides and the budget notes with you."

	tests := []struct {
		text     string
		mode     Mode
		expected string
	}{
		{"   ", Formal, ""},
		{"It is really very good!!", Shorter, "It is good!"},
		{"Why???", Shorter, "Why?"},
		{long, Shorter, "The meeting moved to Thursday afternoon because " +
			"the room was booked."},
		{"Hello, I am happy to help", Friendly, "Hey, I'm happy to help!"},
		{"Thank you", Friendly, "Thank you! 😊"},
		{"sure thing", Friendly, "sure thing! 👍"},
		{"All good 👍", Friendly, "All good 👍!"},
		{"hey, I'm gonna be late 😅", Formal, "Hello, I am going to be late."},
		{"we can't make it", Formal, "We cannot make it."},
		{"as is", Mode("poetic"), "as is"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, Rewrite(tt.text, tt.mode),
			"%s: %q", tt.mode, tt.text)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		parsed, err := ParseMode(" " + string(m) + " ")
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}
	_, err := ParseMode("louder")
	require.Error(t, err)

	require.Equal(t, "More formal", Formal.Label())
	require.Equal(t, "poetic", Mode("poetic").Label())
}
