// Package segment splits an utterance into independently routed clauses.
package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var punctuation = regexp.MustCompile(`[?.!,]`)

// Split breaks text on sentence punctuation, commas and the standalone word
// "and". Clause order follows the input; empty clauses are dropped.
func Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, sentence := range punctuation.Split(text, -1) {
		for _, p := range splitOnAnd(sentence) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// splitOnAnd cuts s at every "and" (any case) whose neighbours are not word
// characters. Word characters are Unicode letters, digits, marks and '_', so
// "Andújar" stays whole.
func splitOnAnd(s string) []string {
	var parts []string
	start := 0
	for i := 0; i+3 <= len(s); i++ {
		if !isAnd(s[i : i+3]) {
			continue
		}
		if i > 0 {
			if r, _ := utf8.DecodeLastRuneInString(s[:i]); isWordRune(r) {
				continue
			}
		}
		if i+3 < len(s) {
			if r, _ := utf8.DecodeRuneInString(s[i+3:]); isWordRune(r) {
				continue
			}
		}
		parts = append(parts, s[start:i])
		start = i + 3
		i += 2
	}
	return append(parts, s[start:])
}

func isAnd(s string) bool {
	return s[0]|0x20 == 'a' && s[1]|0x20 == 'n' && s[2]|0x20 == 'd'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Words lower-cases text and returns its words. Apostrophes stay inside a
// word so "what's" is one token.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’')
	})
}
