// Package similarity scores how well a raw form field name matches a set of
// reference phrases. The scorer combines five independent strategies and
// takes their maximum, producing a normalized confidence in [0,1]. It is a
// pure function: no state, no side effects, deterministic for a given input.
//
// The strategies are tuned for the bilingual (Romanian/English) question
// vocabulary found in production form exports; this is a matching heuristic,
// not a general NLP solution.
package similarity

import (
	"strings"
	"unicode"
)

// Strategy weights. Containment matches are boosted above 1.0 because a
// literal substring hit is stronger evidence than the raw length ratio
// suggests; edit distance is discounted because short strings produce
// accidental closeness.
const (
	substringWeight = 1.2
	reverseWeight   = 1.1
	wordWeight      = 0.9
	editWeight      = 0.8
	phraseWeight    = 0.9
)

// minTokenLength filters connective words ("de", "to", "ai") out of
// word-level matching.
const minTokenLength = 2

// Normalize lowercases the input, replaces every character that is not a
// letter or whitespace with a space, collapses runs of whitespace, and trims.
// unicode.IsLetter keeps the Romanian diacritics intact.
func Normalize(s string) string {
	lower := strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Score computes the similarity between a raw field name and a pattern set.
// The result is the maximum sub-score across all patterns and strategies,
// capped at 1.0. An empty field name or empty pattern set scores 0.
func Score(fieldName string, patterns []string) float64 {
	field := Normalize(fieldName)
	if field == "" || len(patterns) == 0 {
		return 0
	}

	fieldRunes := []rune(field)
	fieldTokens := tokens(field)

	var max float64
	for _, p := range patterns {
		pattern := strings.ToLower(p)
		if pattern == "" {
			continue
		}
		patternRunes := []rune(pattern)

		// Substring containment: pattern inside field.
		if strings.Contains(field, pattern) {
			max = maxFloat(max, float64(len(patternRunes))/float64(len(fieldRunes))*substringWeight)
		}

		// Reverse containment: field inside pattern.
		if strings.Contains(pattern, field) {
			max = maxFloat(max, float64(len(fieldRunes))/float64(len(patternRunes))*reverseWeight)
		}

		// Word-level overlap.
		max = maxFloat(max, wordOverlap(fieldTokens, tokens(pattern))*wordWeight)

		// Edit-distance similarity.
		if longest := maxInt(len(fieldRunes), len(patternRunes)); longest > 0 {
			d := Levenshtein(field, pattern)
			max = maxFloat(max, float64(longest-d)/float64(longest)*editWeight)
		}

		// Key-phrase category evidence.
		max = maxFloat(max, keyPhraseScore(field, pattern))
	}

	return minFloat(max, 1.0)
}

// wordOverlap counts field tokens that contain or are contained by any
// pattern token, normalized by the larger token count.
func wordOverlap(fieldTokens, patternTokens []string) float64 {
	if len(fieldTokens) == 0 || len(patternTokens) == 0 {
		return 0
	}

	matches := 0
	for _, ft := range fieldTokens {
		for _, pt := range patternTokens {
			if strings.Contains(ft, pt) || strings.Contains(pt, ft) {
				matches++
				break
			}
		}
	}

	return float64(matches) / float64(maxInt(len(fieldTokens), len(patternTokens)))
}

// tokens splits a normalized string on whitespace and drops short
// connective words.
func tokens(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > minTokenLength {
			out = append(out, w)
		}
	}
	return out
}

// Levenshtein returns the classic edit distance between two strings,
// operating on runes so diacritics count as single edits.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = minInt(prev[j-1], minInt(curr[j-1], prev[j])) + 1
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
