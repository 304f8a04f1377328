////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package assist

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/caffeinepub/vibechat/emoji"
	"github.com/pkg/errors"
)

// Mode is a style a draft can be rewritten in.
type Mode string

const (
	Shorter  Mode = "shorter"
	Friendly Mode = "friendly"
	Formal   Mode = "formal"
)

// Modes lists every Mode in display order.
var Modes = []Mode{Shorter, Friendly, Formal}

// ParseMode returns the Mode with the name.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == strings.ToLower(strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown rewrite mode %q", name)
}

// Label returns the name of the mode shown to users.
func (m Mode) Label() string {
	switch m {
	case Shorter:
		return "Shorter"
	case Friendly:
		return "More friendly"
	case Formal:
		return "More formal"
	default:
		return string(m)
	}
}

// maxShortLength is the length above which a shortened text is cut down to
// its first sentence.
const maxShortLength = 100

type substitution struct {
	pattern *regexp.Regexp
	repl    string
}

func substitutions(pairs ...string) []substitution {
	subs := make([]substitution, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		subs = append(subs, substitution{
			pattern: regexp.MustCompile(`(?i)\b` + pairs[i] + `\b`),
			repl:    pairs[i+1],
		})
	}
	return subs
}

func apply(text string, subs []substitution) string {
	for _, s := range subs {
		text = s.pattern.ReplaceAllLiteralString(text, s.repl)
	}
	return text
}

var (
	fillers = substitutions(
		`(actually|basically|literally|honestly|really|very|quite|just|simply|totally|absolutely)`, "",
		`(I think that|I believe that|In my opinion,?|It seems that)`, "",
		`(kind of|sort of|a bit|a little)`, "",
	)

	casual = substitutions(
		`Hello`, "Hey",
		`Good morning`, "Morning",
		`Good afternoon`, "Hey",
		`Good evening`, "Hey",
		`I would like to`, "I'd like to",
		`I am`, "I'm",
		`do not`, "don't",
		`cannot`, "can't",
		`will not`, "won't",
		`should not`, "shouldn't",
		`would not`, "wouldn't",
	)

	formal = substitutions(
		`I'm`, "I am",
		`I'd`, "I would",
		`I'll`, "I will",
		`don't`, "do not",
		`can't`, "cannot",
		`won't`, "will not",
		`shouldn't`, "should not",
		`wouldn't`, "would not",
		`couldn't`, "could not",
		`hasn't`, "has not",
		`haven't`, "have not",
		`isn't`, "is not",
		`aren't`, "are not",
		`wasn't`, "was not",
		`weren't`, "were not",
		`Hey`, "Hello",
		`Hi`, "Hello",
		`Yo`, "Hello",
		`kinda`, "kind of",
		`gonna`, "going to",
		`wanna`, "want to",
		`gotta`, "have to",
	)

	whitespace        = regexp.MustCompile(`\s+`)
	repeatedBang      = regexp.MustCompile(`!+`)
	repeatedQuery     = regexp.MustCompile(`\?+`)
	sentenceBreak     = regexp.MustCompile(`[.!?]+`)
	endsInPunctuation = regexp.MustCompile(`[.!?]$`)
)

// Rewrite returns the text in the mode's style. Empty text stays empty.
func Rewrite(text string, mode Mode) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return trimmed
	}

	switch mode {
	case Shorter:
		return shorter(trimmed)
	case Friendly:
		return friendly(trimmed)
	case Formal:
		return formalize(trimmed)
	default:
		return trimmed
	}
}

func collapseSpaces(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func shorter(text string) string {
	result := collapseSpaces(apply(text, fillers))
	result = repeatedBang.ReplaceAllString(result, "!")
	result = repeatedQuery.ReplaceAllString(result, "?")

	if utf8.RuneCountInString(result) > maxShortLength {
		var sentences []string
		for _, s := range sentenceBreak.Split(result, -1) {
			if strings.TrimSpace(s) != "" {
				sentences = append(sentences, s)
			}
		}
		if len(sentences) > 1 {
			result = strings.TrimSpace(sentences[0]) + "."
		}
	}
	return result
}

func friendly(text string) string {
	result := apply(text, casual)
	if !endsInPunctuation.MatchString(result) {
		result += "!"
	}

	if containsAny(result, "😊", "👍", "😄") {
		return result
	}
	lower := strings.ToLower(result)
	switch {
	case containsAny(lower, "thank", "great", "awesome"):
		result += " 😊"
	case containsAny(lower, "yes", "sure", "okay"):
		result += " 👍"
	case containsAny(lower, "haha", "lol", "funny"):
		result += " 😄"
	}
	return result
}

func formalize(text string) string {
	result := emoji.Strip(apply(text, formal))
	if result == "" {
		return result
	}
	if !endsInPunctuation.MatchString(result) {
		result += "."
	}

	first, size := utf8.DecodeRuneInString(result)
	return string(unicode.ToUpper(first)) + result[size:]
}
