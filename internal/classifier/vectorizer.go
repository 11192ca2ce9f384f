package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern matches the training tokenizer: runs of two or more word
// characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer maps text onto the fixed vocabulary used at training time.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Lowercase  bool           `json:"lowercase"`
}

func (v *Vectorizer) validate() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("vectorizer vocabulary is empty")
	}
	seen := make(map[int]string, len(v.Vocabulary))
	for tok, col := range v.Vocabulary {
		if col < 0 || col >= len(v.Vocabulary) {
			return fmt.Errorf("vocabulary column %d for %q out of range", col, tok)
		}
		if other, ok := seen[col]; ok {
			return fmt.Errorf("vocabulary column %d shared by %q and %q", col, other, tok)
		}
		seen[col] = tok
	}
	return nil
}

func (v *Vectorizer) Tokens(text string) []string {
	if v.Lowercase {
		text = strings.ToLower(text)
	}
	return tokenPattern.FindAllString(text, -1)
}

// Transform returns sparse term counts keyed by vocabulary column and the
// total number of tokens seen, known or not.
func (v *Vectorizer) Transform(text string) (map[int]float64, int) {
	tokens := v.Tokens(text)
	counts := make(map[int]float64, len(tokens))
	for _, tok := range tokens {
		if col, ok := v.Vocabulary[tok]; ok {
			counts[col]++
		}
	}
	return counts, len(tokens)
}
