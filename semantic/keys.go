// Package semantic defines the canonical, schema-independent field
// identifiers used across the resolution and assignment engines. A semantic
// key names a business concept ("the submitter's email") independent of
// whatever raw question string a particular form revision used for it.
package semantic

// Key identifies a canonical business field.
type Key string

// Contact and identity keys.
const (
	KeyFirstName Key = "FIRST_NAME"
	KeyPhone     Key = "PHONE"
	KeyEmail     Key = "EMAIL"
	KeyAge       Key = "AGE"
	KeyChurch    Key = "CHURCH"
	KeyContext   Key = "CONTEXT"
)

// Location keys. Location distinguishes in-country from diaspora residents;
// the city keys carry the free-text detail.
const (
	KeyLocation          Key = "LOCATION"
	KeyCityRomania       Key = "CITY_ROMANIA"
	KeyCityInternational Key = "CITY_INTERNATIONAL"
)

// Prayer commitment keys.
const (
	KeyPrayerMethod         Key = "PRAYER_METHOD"
	KeyPrayerAdoption       Key = "PRAYER_ADOPTION"
	KeyMissionarySelection  Key = "MISSIONARY_SELECTION"
	KeyMissionaryTime       Key = "MISSIONARY_TIME"
	KeyEthnicGroupSelection Key = "ETHNIC_GROUP_SELECTION"
	KeyEthnicGroupTime      Key = "ETHNIC_GROUP_TIME"
)

// Program interest keys.
const (
	KeyCampInfo          Key = "CAMP_INFO"
	KeyVolunteerInterest Key = "VOLUNTEER_INTEREST"
	KeyVolunteerPosition Key = "VOLUNTEER_POSITION"
	KeyFinancialSupport  Key = "FINANCIAL_SUPPORT"
	KeyMissionField      Key = "MISSION_FIELD"
	KeyCoursesInterest   Key = "COURSES_INTEREST"
	KeyCRSTInfo          Key = "CRST_INFO"
)

// Bookkeeping keys carried through from form exports.
const (
	KeyObservations Key = "OBSERVATIONS"
	KeyConsent      Key = "CONSENT"
	KeySubmittedAt  Key = "SUBMITTED_AT"
	KeyToken        Key = "TOKEN"
)

// AllKeys returns every semantic key, in a stable order. Used by the schema
// analyzer and by config validation.
func AllKeys() []Key {
	return []Key{
		KeyFirstName, KeyPhone, KeyEmail, KeyAge,
		KeyLocation, KeyCityRomania, KeyCityInternational,
		KeyChurch, KeyContext,
		KeyPrayerMethod, KeyPrayerAdoption,
		KeyMissionarySelection, KeyMissionaryTime,
		KeyEthnicGroupSelection, KeyEthnicGroupTime,
		KeyCampInfo, KeyVolunteerInterest, KeyVolunteerPosition,
		KeyFinancialSupport, KeyMissionField, KeyCoursesInterest, KeyCRSTInfo,
		KeyObservations, KeyConsent, KeySubmittedAt, KeyToken,
	}
}

// ImportantKeys lists the keys that drive most assignment decisions. The
// schema analyzer weights its confidence score by how many of these it can
// map for a new data source.
func ImportantKeys() []Key {
	return []Key{KeyFirstName, KeyEmail, KeyPrayerAdoption, KeyMissionField}
}

// String returns the key's canonical identifier.
func (k Key) String() string {
	return string(k)
}
