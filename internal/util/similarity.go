package util

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TokenSet is a set of lowercased tokens
type TokenSet map[string]struct{}

// Tokenize lowercases text and splits it into runs of letters and digits
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
}

// NewTokenSet builds a set from tokens
func NewTokenSet(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets have similarity 0.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Cosine returns the cosine similarity of the term-frequency vectors of a and b
func Cosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	fa := termFrequencies(a)
	fb := termFrequencies(b)

	// Iterate in sorted key order so the float sum is reproducible
	keys := make([]string, 0, len(fa))
	for t := range fa {
		keys = append(keys, t)
	}
	sort.Strings(keys)

	var dot float64
	for _, t := range keys {
		dot += fa[t] * fb[t]
	}
	return dot / (norm(fa) * norm(fb))
}

func termFrequencies(tokens []string) map[string]float64 {
	freq := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

func norm(freq map[string]float64) float64 {
	keys := make([]string, 0, len(freq))
	for t := range freq {
		keys = append(keys, t)
	}
	sort.Strings(keys)

	var sum float64
	for _, t := range keys {
		sum += freq[t] * freq[t]
	}
	return math.Sqrt(sum)
}

// SortedKeys returns the members of s in lexical order
func (s TokenSet) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for t := range s {
		keys = append(keys, t)
	}
	sort.Strings(keys)
	return keys
}
