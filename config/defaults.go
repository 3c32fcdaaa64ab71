package config

import "github.com/c360studio/formroute/semantic"

// defaultPrimary returns the exact raw question strings of the current form
// revision. These change whenever the form is edited; the pattern tables
// below absorb that drift.
func defaultPrimary() map[semantic.Key]string {
	return map[semantic.Key]string{
		semantic.KeyFirstName:         "Bună, cum te numești?",
		semantic.KeyPhone:             "Număr de telefon",
		semantic.KeyEmail:             "Email",
		semantic.KeyAge:               "Câți ani ai?",
		semantic.KeyLocation:          "Unde locuiești ?",
		semantic.KeyCityRomania:       "În ce oraș din România locuiești ?",
		semantic.KeyCityInternational: "În ce oraș și țară locuiești ?",
		semantic.KeyChurch:            "La ce biserică mergi ?",
		semantic.KeyContext:           "În ce context completezi formularul ?",

		semantic.KeyPrayerMethod:         "Cum ai vrea să te rogi mai mult pentru misiune? ",
		semantic.KeyPrayerAdoption:       "Vrei să adopți în rugăciune un misionar sau un popor neatins cu Evanghelia?",
		semantic.KeyMissionarySelection:  "Pentru care misionar vrei să te rogi ?",
		semantic.KeyMissionaryTime:       "Cât timp o să te rogi, săptămânal, pentru {{field:pray_missionary_select}} ?",
		semantic.KeyEthnicGroupSelection: "Pentru care popor vrei să te rogi ?",
		semantic.KeyEthnicGroupTime:      "Cât timp o să te rogi, săptămânal, pentru grupul {{field:pray_country_select}}?",

		semantic.KeyCampInfo:          "Vrei să primești informații despre taberele de misiune APME ?",
		semantic.KeyVolunteerInterest: "Dorești să te implici ca voluntar APME?",
		semantic.KeyVolunteerPosition: "În ce poziție de voluntariat vrei să te implici ?",
		semantic.KeyFinancialSupport:  "Dorești să ajuți financiar lucrările și misionarii APME?",
		semantic.KeyMissionField:      "Vrei să fii informat(ă) despre oportunitățile de a merge pe câmpul de misiune?",
		semantic.KeyCoursesInterest:   "Ești interesat(ă) să participi la anumite cursuri de pregătire când vor fi disponibile în zona ta?",
		semantic.KeyCRSTInfo:          "Dorești mai multe informații despre CRST (școala de misiune de la Agigea, CT)? ",

		semantic.KeyObservations: "Alte observații",
		semantic.KeySubmittedAt:  "Submitted At",
		semantic.KeyToken:        "Token",
	}
}

// defaultPatterns returns the fuzzy-match reference phrases per key, bilingual
// so records from either language variant of the form resolve.
func defaultPatterns() map[semantic.Key][]string {
	return map[semantic.Key][]string{
		semantic.KeyFirstName: {
			"nume", "numele", "prenume", "cum te numești", "cum te cheamă", "first name",
			"name", "full name", "numele tău", "numele complet", "care este numele",
			"complete name", "legal name", "what is your name", "your name",
		},
		semantic.KeyEmail: {
			"email", "e-mail", "adresa de email", "mail", "contact email",
			"email address", "adresă email", "pentru confirmări", "contact",
			"electronic mail", "email pentru", "adresa email", "mail address",
		},
		semantic.KeyPhone: {
			"telefon", "tel", "phone", "număr", "contact", "număr de telefon",
			"phone number", "contact number", "telephone", "mobile", "mobil",
		},
		semantic.KeyLocation: {
			"unde locuiești", "locație", "location", "oraș", "țară", "residence",
			"where do you live", "country", "city", "unde", "locuiești",
			"address", "current location", "în ce țară", "în ce oraș",
		},
		semantic.KeyPrayerAdoption: {
			"rugăciune", "misionar", "popor", "evanghelia", "prayer", "adopt",
			"adopți în rugăciune", "prayer for missionary", "spiritual adoption",
			"rugăciune pentru", "neatins cu evanghelia", "pray for",
			"missionary prayer", "prayer adoption", "would you like to pray",
		},
		semantic.KeyMissionarySelection: {
			"care misionar", "pentru care", "missionary", "selectează",
			"which missionary", "misionar vrei", "pentru care misionar",
			"selectează misionarul", "missionary selection",
			"choose missionary", "select missionary", "specific missionary",
		},
		semantic.KeyEthnicGroupSelection: {
			"care popor", "grup etnic", "ethnic", "people group", "neevanghelizat",
			"pentru care popor", "ethnic group", "popor vrei",
			"unreached people", "which people group", "unreached group",
		},
		semantic.KeyMissionField: {
			"câmpul de misiune", "mission field", "oportunități", "overseas",
			"oportunitățile de a merge", "mission opportunities", "câmp de misiune",
			"misiune pe termen", "overseas service", "mission trips", "mission work",
			"mission involvement", "mission field interest",
		},
		semantic.KeyPrayerMethod: {
			"cum ai vrea să te rogi", "te rogi mai mult", "prayer method",
			"grup de rugăciune", "prayer group", "how would you pray",
		},
		semantic.KeyCampInfo: {
			"tabere", "camp", "informații", "participare", "mission camps",
			"tabere de misiune", "camp information", "training camps",
			"camp opportunities", "camp participation", "camp details",
		},
		semantic.KeyCoursesInterest: {
			"cursuri", "course", "pregătire", "training", "școală",
			"cursuri de pregătire", "training courses", "educational programs",
			"workshops", "kairos", "mobilizează", "training programs",
			"course interest", "educational courses",
		},
		semantic.KeyFinancialSupport: {
			"financiar", "financial", "ajutor", "support", "donație",
			"ajuți financiar", "financial help", "donations", "monetary support",
			"financial assistance", "financial contribution",
		},
		semantic.KeyVolunteerInterest: {
			"voluntar", "volunteer", "implicare", "servire",
			"voluntariat", "volunteer opportunities", "service", "involvement",
			"volunteer work", "service opportunities",
		},
		semantic.KeyCRSTInfo: {
			"crst", "școala de misiune", "mission school", "agigea",
		},
	}
}
