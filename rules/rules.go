// Package rules assigns outreach templates to resolved survey records. Each
// category has one stateless evaluator; the engine runs them in a fixed order
// and deduplicates the combined result. Exclusion literals and dispatch
// tables come from configuration; a value that matches nothing produces no
// assignment rather than a guess.
package rules

// Category names one evaluator's business concern.
type Category string

const (
	CategoryMission        Category = "mission"
	CategoryPrayerAdoption Category = "prayer_adoption"
	CategoryPrayerGroup    Category = "prayer_group"
	CategoryCamp           Category = "camp"
	CategoryCourse         Category = "course"
	CategoryFinancial      Category = "financial"
	CategoryVolunteer      Category = "volunteer"
)

// CategoryOrder is the evaluation order. Assignment output order follows it,
// so changing it changes audit output for identical input.
var CategoryOrder = []Category{
	CategoryMission,
	CategoryPrayerAdoption,
	CategoryPrayerGroup,
	CategoryCamp,
	CategoryCourse,
	CategoryFinancial,
	CategoryVolunteer,
}

// Assignment couples a template identifier with the category that produced
// it and a human-readable justification.
type Assignment struct {
	Template string
	Category Category
	Reason   string
}
