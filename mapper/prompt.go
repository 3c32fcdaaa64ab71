package mapper

import (
	"fmt"
	"strings"

	"github.com/c360studio/formroute/semantic"
)

// keyMeanings explains each semantic key to the mapping service. Field names
// arrive in Romanian or English, so the hints mention both.
var keyMeanings = map[semantic.Key]string{
	semantic.KeyFirstName:            "the respondent's first or full name (nume, prenume)",
	semantic.KeyEmail:                "the respondent's email address (adresa de email)",
	semantic.KeyPhone:                "the respondent's phone number (telefon)",
	semantic.KeyAge:                  "the respondent's age (varsta, cati ani)",
	semantic.KeyChurch:               "the church the respondent attends (biserica)",
	semantic.KeyContext:              "where or how the respondent filled in the form (context, eveniment)",
	semantic.KeyLocation:             "whether the respondent lives in Romania or abroad (locuiesti in Romania)",
	semantic.KeyCityRomania:          "the city for respondents living in Romania (oras, localitate)",
	semantic.KeyCityInternational:    "the city and country for respondents living abroad",
	semantic.KeyPrayerMethod:         "how the respondent wants to join a prayer group (grup de rugaciune)",
	semantic.KeyPrayerAdoption:       "adopting a missionary or people group in prayer (adoptie in rugaciune)",
	semantic.KeyMissionarySelection:  "which missionary the respondent wants to adopt (misionar)",
	semantic.KeyMissionaryTime:       "how long the respondent commits to pray for a missionary",
	semantic.KeyEthnicGroupSelection: "which unreached people group the respondent wants to adopt (popor neatins)",
	semantic.KeyEthnicGroupTime:      "how long the respondent commits to pray for a people group",
	semantic.KeyCampInfo:             "interest in a missions camp or event (tabara)",
	semantic.KeyVolunteerInterest:    "willingness to volunteer (voluntariat, implicare)",
	semantic.KeyVolunteerPosition:    "the volunteer role the respondent prefers",
	semantic.KeyFinancialSupport:     "willingness to give financially (sprijin financiar, donatie)",
	semantic.KeyMissionField:         "interest in going to the mission field (camp de misiune)",
	semantic.KeyCoursesInterest:      "interest in a missions course (curs, Kairos, Mobilizeaza)",
	semantic.KeyCRSTInfo:             "interest in theological studies information (CRST)",
	semantic.KeyObservations:         "free-text observations or comments (observatii, mentiuni)",
	semantic.KeyConsent:              "data-processing consent (acord, GDPR)",
	semantic.KeySubmittedAt:          "the submission timestamp (data, timestamp)",
	semantic.KeyToken:                "the form's internal submission token",
}

// buildPrompt produces the single-key mapping prompt. The service must answer
// with one field name copied verbatim from the list, or NO_MATCH.
func buildPrompt(key semantic.Key, availableFields []string) string {
	var sb strings.Builder
	sb.WriteString("You map survey form fields to semantic keys.\n\n")
	sb.WriteString(fmt.Sprintf("Semantic key: %s\n", key))
	if meaning, ok := keyMeanings[key]; ok {
		sb.WriteString(fmt.Sprintf("Meaning: %s\n", meaning))
	}
	sb.WriteString("\nAvailable field names:\n")
	for _, f := range availableFields {
		sb.WriteString(fmt.Sprintf("- %q\n", f))
	}
	sb.WriteString("\nAnswer with the one field name from the list that matches the key, ")
	sb.WriteString("copied exactly, with no explanation. ")
	sb.WriteString("If no field matches, answer NO_MATCH.")
	return sb.String()
}

// buildBatchPrompt produces the multi-key mapping prompt. The service answers
// one line per key in the form `KEY: "field name"` or `KEY: NO_MATCH`.
func buildBatchPrompt(keys []semantic.Key, availableFields []string) string {
	var sb strings.Builder
	sb.WriteString("You map survey form fields to semantic keys.\n\n")
	sb.WriteString("Semantic keys:\n")
	for _, k := range keys {
		if meaning, ok := keyMeanings[k]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", k, meaning))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", k))
		}
	}
	sb.WriteString("\nAvailable field names:\n")
	for _, f := range availableFields {
		sb.WriteString(fmt.Sprintf("- %q\n", f))
	}
	sb.WriteString("\nAnswer with one line per key, in the form:\n")
	sb.WriteString("KEY: \"field name\"\n")
	sb.WriteString("using field names copied exactly from the list. ")
	sb.WriteString("If no field matches a key, answer KEY: NO_MATCH.")
	return sb.String()
}
