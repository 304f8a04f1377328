////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package assist suggests replies and rewrites drafts on the device using
// fixed keyword rules. No text leaves the client.
package assist

import (
	"regexp"
	"strconv"
	"strings"
)

// Reply is one suggested reply.
type Reply struct {
	ID   string
	Text string
}

// replyRule suggests its replies when match accepts the lowercased message.
type replyRule struct {
	match   func(lower string) bool
	replies []string
}

var (
	greetingPattern  = regexp.MustCompile(`^(hi|hey|hello|sup|yo|hiya|howdy)`)
	agreementPattern = regexp.MustCompile(`^(ok|okay|sure|alright|cool|sounds good|got it)`)
)

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// questionRules apply to messages containing a question mark, in order.
var questionRules = []replyRule{
	{
		match: func(l string) bool { return containsAny(l, "how are you", "how r u") },
		replies: []string{"I'm doing great, thanks! How about you?",
			"Pretty good! What's up?", "All good here! 😊"},
	},
	{
		match: func(l string) bool {
			return strings.Contains(l, "what") && containsAny(l, "doing", "up")
		},
		replies: []string{"Not much, just relaxing. You?",
			"Working on some stuff. What about you?", "Just chilling! 😎"},
	},
	{
		match: func(l string) bool { return containsAny(l, "where", "when", "who") },
		replies: []string{"Let me check and get back to you",
			"I'm not sure, let me find out", "Good question! I'll look into it"},
	},
}

var genericQuestionReplies = []string{"Yes, definitely!", "I think so",
	"Let me think about it", "Not sure, what do you think?"}

// statementRules apply to everything else, in order.
var statementRules = []replyRule{
	{
		match: greetingPattern.MatchString,
		replies: []string{"Hey! How's it going?", "Hi there! 👋",
			"Hello! What's up?"},
	},
	{
		match: func(l string) bool { return containsAny(l, "thank", "thx") },
		replies: []string{"You're welcome! 😊", "No problem!", "Happy to help!",
			"Anytime!"},
	},
	{
		match: func(l string) bool { return containsAny(l, "sorry", "apologize") },
		replies: []string{"No worries at all!",
			"It's okay, don't worry about it", "All good! 👍"},
	},
	{
		match:   agreementPattern.MatchString,
		replies: []string{"Great! 👍", "Awesome!", "Perfect!"},
	},
	{
		match: func(l string) bool {
			return containsAny(l, "good", "great", "awesome", "nice")
		},
		replies: []string{"That's wonderful!", "So glad to hear that! 😊",
			"Awesome!"},
	},
	{
		match: func(l string) bool {
			return containsAny(l, "bad", "terrible", "awful", "sad")
		},
		replies: []string{"I'm sorry to hear that 😔",
			"That's tough. Hope things get better",
			"Sending positive vibes your way"},
	},
	{
		match: func(l string) bool { return containsAny(l, "meet", "hang out", "plans") },
		replies: []string{"Sounds good! When works for you?",
			"I'd love to! Let me check my schedule",
			"Sure! Where should we meet?"},
	},
}

var fallbackReplies = []string{"That's interesting!", "Tell me more", "I see",
	"Got it 👍"}

// SmartReplies returns three or four suggested replies to the message. The
// same message always gets the same suggestions.
func SmartReplies(message string) []Reply {
	lower := strings.ToLower(strings.TrimSpace(message))

	if strings.Contains(lower, "?") {
		for _, rule := range questionRules {
			if rule.match(lower) {
				return toReplies(rule.replies)
			}
		}
		return toReplies(genericQuestionReplies)
	}

	for _, rule := range statementRules {
		if rule.match(lower) {
			return toReplies(rule.replies)
		}
	}
	return toReplies(fallbackReplies)
}

func toReplies(texts []string) []Reply {
	replies := make([]Reply, len(texts))
	for i, text := range texts {
		replies[i] = Reply{ID: strconv.Itoa(i + 1), Text: text}
	}
	return replies
}
