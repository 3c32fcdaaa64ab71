package similarity

import "strings"

// keyPhrases groups the short phrases that signal a field belongs to one of
// the business categories, in both Romanian and English. When the field name
// and the pattern carry evidence from the same category, the match gets
// credit even if they share no literal substring.
var keyPhrases = map[string][]string{
	"name":      {"nume", "name", "numele", "prenume", "complet"},
	"email":     {"email", "mail", "adresa", "contact"},
	"prayer":    {"rugăciune", "prayer", "misionar", "missionary", "popor", "ethnic"},
	"mission":   {"misiune", "mission", "câmp", "field", "overseas", "oportunit"},
	"course":    {"curs", "course", "pregătire", "training", "kairos", "școală"},
	"volunteer": {"voluntar", "volunteer", "implicare", "servire"},
	"financial": {"financiar", "financial", "ajutor", "donație", "support"},
}

// keyPhraseScore scores shared category evidence between a normalized field
// name and a lowercased pattern. For each category, every phrase present in
// either string contributes proportionally to its length; the average is
// scaled by the fraction of the category's phrases that matched, then
// weighted below the containment strategies.
func keyPhraseScore(field, pattern string) float64 {
	denominator := float64(len([]rune(field)) + len([]rune(pattern)))
	if denominator == 0 {
		return 0
	}

	var best float64
	for _, phrases := range keyPhrases {
		var categoryScore float64
		matchCount := 0

		for _, phrase := range phrases {
			if strings.Contains(field, phrase) || strings.Contains(pattern, phrase) {
				categoryScore += float64(len([]rune(phrase))) / denominator
				matchCount++
			}
		}

		if matchCount == 0 {
			continue
		}

		avg := categoryScore / float64(matchCount)
		ratio := minFloat(float64(matchCount)/float64(len(phrases)), 1.0)
		best = maxFloat(best, avg*ratio*phraseWeight)
	}

	return best
}
