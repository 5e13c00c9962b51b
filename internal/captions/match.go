package captions

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Policy selects how caption words are compared with highlight keywords.
type Policy string

const (
	PolicyExact Policy = "exact"
	PolicyFold  Policy = "fold"
	PolicyStem  Policy = "stem"
)

// ParsePolicy maps a config value to a Policy. Empty means PolicyFold.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return PolicyFold, nil
	case PolicyExact, PolicyFold, PolicyStem:
		return p, nil
	default:
		return "", fmt.Errorf("unknown keyword match policy %q", value)
	}
}

// Matcher normalizes words and keywords so they can be compared.
type Matcher struct {
	policy Policy
	fold   cases.Caser
}

// NewMatcher returns a matcher for the policy.
func NewMatcher(policy Policy) Matcher {
	if policy == "" {
		policy = PolicyFold
	}
	return Matcher{policy: policy, fold: cases.Fold()}
}

// Policy returns the matcher's policy.
func (m Matcher) Policy() Policy { return m.policy }

// Normalize reduces a word to its comparison key.
func (m Matcher) Normalize(word string) string {
	word = strings.TrimSpace(word)
	if m.policy == PolicyExact {
		return word
	}
	word = strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	word = m.fold.String(word)
	if m.policy == PolicyStem {
		word = stem(word)
	}
	return word
}

// KeywordSet normalizes keywords into a lookup set.
func (m Matcher) KeywordSet(keywords []string) map[string]bool {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		if n := m.Normalize(k); n != "" {
			set[n] = true
		}
	}
	return set
}

var suffixes = []string{"ing", "ed", "es", "ly", "s"}

// stem strips one common English suffix, then a silent final e and a doubled
// final consonant, so "cases" and "case" both become "cas" and "running" and
// "run" both become "run". Every step keeps at least three runes.
func stem(word string) string {
	for _, suffix := range suffixes {
		if !strings.HasSuffix(word, suffix) {
			continue
		}
		if base := strings.TrimSuffix(word, suffix); runeLen(base) >= 3 {
			word = base
			break
		}
	}
	if base := strings.TrimSuffix(word, "e"); base != word && runeLen(base) >= 3 {
		word = base
	}
	if r := []rune(word); len(r) >= 4 && r[len(r)-1] == r[len(r)-2] && isConsonant(r[len(r)-1]) {
		word = string(r[:len(r)-1])
	}
	return word
}

func runeLen(s string) int { return len([]rune(s)) }

func isConsonant(r rune) bool {
	return unicode.IsLetter(r) && !strings.ContainsRune("aeiouy", r)
}
