// Package rules holds fixed keyword and phrase overrides that answer a whole
// utterance before any classification happens.
package rules

import (
	"fmt"
	"strings"
	"time"

	"moyen/internal/domain"
	"moyen/internal/lookup"
	"moyen/internal/segment"
)

const capabilityReply = "I can greet you, tell you my name, give you the time, check the weather in different cities, and chat a little 😊"

// Match is the outcome of a rule hit. Tag is recorded as the session's last
// intent.
type Match struct {
	Rule  string
	Tag   string
	Reply string
}

type rule struct {
	name    string
	tag     string
	matches func(msg string, words map[string]struct{}) bool
	reply   func(now time.Time) string
}

// Layer evaluates rules in a fixed priority order; the first hit wins.
type Layer struct {
	rules []rule
	clock lookup.Clock
}

func NewLayer(botName string, clock lookup.Clock) *Layer {
	if clock == nil {
		clock = lookup.SystemClock
	}
	nameReply := fmt.Sprintf("My name is %s 🤖", botName)
	return &Layer{
		clock: clock,
		rules: []rule{
			{
				name:    "greeting",
				tag:     domain.TagGreeting,
				matches: anyWord("hi", "hello", "hey"),
				reply:   fixed("Hello there 👋"),
			},
			{
				name:    "wellbeing",
				tag:     "wellbeing",
				matches: anyPhrase("how are you"),
				reply:   fixed("I’m fine, and you? 🙂"),
			},
			{
				name: "capability",
				tag:  "help",
				matches: func(msg string, words map[string]struct{}) bool {
					return anyPhrase("what can you do")(msg, words) || anyWord("help")(msg, words)
				},
				reply: fixed(capabilityReply),
			},
			{
				name:    "name",
				tag:     "name",
				matches: anyPhrase("your name"),
				reply:   fixed(nameReply),
			},
			{
				name: "universal-time",
				tag:  domain.TagTime,
				matches: func(msg string, words map[string]struct{}) bool {
					return anyWord("time")(msg, words) && anyWord("universal", "utc")(msg, words)
				},
				reply: lookup.UniversalTime,
			},
		},
	}
}

// Check returns the first matching rule for the raw utterance.
func (l *Layer) Check(utterance string) (Match, bool) {
	msg := strings.ToLower(utterance)
	words := wordSet(msg)
	for _, r := range l.rules {
		if r.matches(msg, words) {
			return Match{Rule: r.name, Tag: r.tag, Reply: r.reply(l.clock())}, true
		}
	}
	return Match{}, false
}

func fixed(s string) func(time.Time) string {
	return func(time.Time) string { return s }
}

func anyWord(candidates ...string) func(string, map[string]struct{}) bool {
	return func(_ string, words map[string]struct{}) bool {
		for _, c := range candidates {
			if _, ok := words[c]; ok {
				return true
			}
		}
		return false
	}
}

func anyPhrase(candidates ...string) func(string, map[string]struct{}) bool {
	return func(msg string, _ map[string]struct{}) bool {
		for _, c := range candidates {
			if strings.Contains(msg, c) {
				return true
			}
		}
		return false
	}
}

func wordSet(msg string) map[string]struct{} {
	words := segment.Words(msg)
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
