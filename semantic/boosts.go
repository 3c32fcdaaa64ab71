package semantic

import "strings"

// BoostHint raises a similarity score for field names that contain substrings
// which make the match obviously correct even when structural similarity
// under-scores it (short raw names like "E-mail:" against long pattern
// phrases).
type BoostHint struct {
	// Substrings are matched case-insensitively against the raw field name.
	Substrings []string

	// Bonus is added to the score on any substring hit, capped at 1.0 by
	// the caller.
	Bonus float64
}

// boostHints maps keys to their obviously-correct markers. Only keys whose
// raw names commonly collapse to short labels need entries.
var boostHints = map[Key]BoostHint{
	KeyFirstName: {
		Substrings: []string{"name:", "what is your name", "full name", "numele"},
		Bonus:      0.2,
	},
	KeyEmail: {
		Substrings: []string{"e-mail:", "email address", "contact email", "mail:"},
		Bonus:      0.15,
	},
	KeyPrayerAdoption: {
		Substrings: []string{"prayer?", "would you like to pray", "prayer adoption"},
		Bonus:      0.2,
	},
	KeyMissionarySelection: {
		Substrings: []string{"mission?", "missionary selection", "which missionary"},
		Bonus:      0.15,
	},
}

// Boost returns the additive score bonus for fieldName under key, or 0 when
// no hint applies.
func (k Key) Boost(fieldName string) float64 {
	hint, ok := boostHints[k]
	if !ok {
		return 0
	}

	lower := strings.ToLower(fieldName)
	for _, sub := range hint.Substrings {
		if strings.Contains(lower, sub) {
			return hint.Bonus
		}
	}
	return 0
}
