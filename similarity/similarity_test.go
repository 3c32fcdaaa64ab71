package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Email Address", "email address"},
		{"strips punctuation", "E-mail: (pentru confirmări)", "e mail pentru confirmări"},
		{"keeps diacritics", "Cum te numești?", "cum te numești"},
		{"collapses whitespace", "  a   b\tc ", "a b c"},
		{"digits removed", "Top 10 questions", "top questions"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"email", "email", 0},
		{"misiune", "mission", 3},
		{"ă", "a", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestScore_ExactPatternIsPerfect(t *testing.T) {
	score := Score("Email", []string{"email"})
	assert.Equal(t, 1.0, score)
}

func TestScore_CappedAtOne(t *testing.T) {
	// Substring containment can exceed 1.0 before the cap.
	score := Score("email", []string{"email", "e-mail", "mail"})
	assert.LessOrEqual(t, score, 1.0)
	assert.Equal(t, 1.0, score)
}

func TestScore_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, Score("", []string{"email"}))
	assert.Equal(t, 0.0, Score("Email", nil))
	assert.Equal(t, 0.0, Score("???", []string{"email"}))
}

func TestScore_SubstringContainment(t *testing.T) {
	// "financial" (9 letters) inside "financial help" (14 runes normalized):
	// 9/14 * 1.2 ≈ 0.771, above the default 0.7 threshold.
	score := Score("Financial help?", []string{"financial"})
	assert.GreaterOrEqual(t, score, 0.7)
}

func TestScore_ReverseContainment(t *testing.T) {
	// Short field contained in a longer pattern still scores.
	score := Score("misionar", []string{"pentru care misionar vrei să te rogi"})
	assert.Greater(t, score, 0.0)
}

func TestScore_WordOverlapAcrossPhrasing(t *testing.T) {
	score := Score(
		"Would you like to support the mission field overseas?",
		[]string{"mission field", "overseas service", "mission opportunities"},
	)
	assert.Greater(t, score, 0.3)
}

func TestScore_CrossLanguageKeyPhrases(t *testing.T) {
	// Romanian field vs English pattern share the "prayer" category via
	// "misionar"/"missionary" evidence.
	score := Score("Pentru care misionar te rogi?", []string{"missionary prayer"})
	assert.Greater(t, score, 0.0)
}

func TestScore_UnrelatedStringsScoreLow(t *testing.T) {
	score := Score("Câți ani ai?", []string{"email", "e-mail", "adresa de email"})
	assert.Less(t, score, 0.7)
}

func TestScore_Deterministic(t *testing.T) {
	patterns := []string{"financiar", "financial", "ajutor", "support", "donație"}
	first := Score("Dorești să ajuți financiar lucrările?", patterns)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score("Dorești să ajuți financiar lucrările?", patterns))
	}
}
