package rules

import (
	"fmt"
	"strings"

	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/semantic"
)

// Answer literals from the live form. These are answer values, not field
// names, so they do not drift with form revisions the way raw names do.
const (
	answerNo          = "NU"
	answerMissionary  = "Misionar"
	answerEthnicGroup = "Popor neatins cu Evanghelia"

	// Past camp participants never receive camp info again, even though
	// this answer is affirmative and absent from the exclusion set.
	answerCampPastParticipant = "Am participat, doresc să mai fiu informat și pe viitor"

	// Prayer-group intent phrases matched inside each multi-select segment.
	phraseJoinGroup  = "Doresc să particip la un grup de rugăciune pentru misiune"
	phraseLocalArea  = "în zona mea"
	phraseStartGroup = "Doresc mai multe informații despre cum să încep un grup de rugăciune în zona mea"
)

// Canonical location values after mapping through the locale table.
const (
	locationRomania  = "Romania"
	locationDiaspora = "Diaspora"
)

func excluded(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

func (e *Engine) evaluateMission(rec record.Record) []Assignment {
	v := e.value(rec, semantic.KeyMissionField)
	if v == "" || excluded(e.rules.Exclusions.Mission, v) {
		return nil
	}
	return []Assignment{{
		Template: e.rules.Templates.MissionShortTerm,
		Category: CategoryMission,
		Reason:   fmt.Sprintf("mission interest answered %q", v),
	}}
}

func (e *Engine) evaluatePrayerAdoption(rec record.Record) []Assignment {
	v := e.value(rec, semantic.KeyPrayerAdoption)
	if v == "" || v == answerNo {
		return nil
	}

	// A concrete selection is required alongside the adoption type;
	// an adoption answer with an empty selection is incomplete and
	// assigns nothing.
	switch v {
	case answerMissionary:
		if sel := e.value(rec, semantic.KeyMissionarySelection); sel != "" {
			return []Assignment{{
				Template: e.rules.Templates.PrayerMissionary,
				Category: CategoryPrayerAdoption,
				Reason:   fmt.Sprintf("adopting missionary %q in prayer", sel),
			}}
		}
	case answerEthnicGroup:
		if sel := e.value(rec, semantic.KeyEthnicGroupSelection); sel != "" {
			return []Assignment{{
				Template: e.rules.Templates.PrayerEthnic,
				Category: CategoryPrayerAdoption,
				Reason:   fmt.Sprintf("adopting people group %q in prayer", sel),
			}}
		}
	}
	return nil
}

func (e *Engine) evaluatePrayerGroup(rec record.Record) []Assignment {
	method := e.value(rec, semantic.KeyPrayerMethod)
	if method == "" || excluded(e.rules.Exclusions.PrayerGroups, method) {
		return nil
	}

	rawLocation := e.value(rec, semantic.KeyLocation)
	location, ok := e.rules.Locations[rawLocation]
	if !ok {
		location = rawLocation
	}

	// The answer may be a comma-separated multi-select.
	for _, segment := range strings.Split(method, ",") {
		segment = strings.TrimSpace(segment)

		switch {
		case strings.Contains(segment, phraseJoinGroup) && strings.Contains(segment, phraseLocalArea):
			switch location {
			case locationRomania:
				return e.prayerGroupAssignment(e.rules.Templates.RomaniaPrayerGroupJoin, "join", location)
			case locationDiaspora:
				return e.prayerGroupAssignment(e.rules.Templates.DiasporaPrayerGroupJoin, "join", location)
			}
		case strings.Contains(segment, phraseStartGroup):
			switch location {
			case locationRomania:
				return e.prayerGroupAssignment(e.rules.Templates.RomaniaPrayerGroupStart, "start", location)
			case locationDiaspora:
				return e.prayerGroupAssignment(e.rules.Templates.DiasporaPrayerGroupStart, "start", location)
			}
		}
	}

	return nil
}

func (e *Engine) prayerGroupAssignment(template, intent, location string) []Assignment {
	return []Assignment{{
		Template: template,
		Category: CategoryPrayerGroup,
		Reason:   fmt.Sprintf("wants to %s a prayer group (%s)", intent, location),
	}}
}

func (e *Engine) evaluateCamp(rec record.Record) []Assignment {
	v := e.value(rec, semantic.KeyCampInfo)
	if v == "" || excluded(e.rules.Exclusions.Camp, v) {
		return nil
	}
	if v == answerCampPastParticipant {
		return nil
	}
	return []Assignment{{
		Template: e.rules.Templates.CampInfo,
		Category: CategoryCamp,
		Reason:   fmt.Sprintf("camp interest answered %q", v),
	}}
}

func (e *Engine) evaluateCourse(rec record.Record) []Assignment {
	v := e.value(rec, semantic.KeyCoursesInterest)
	if v == "" || excluded(e.rules.Exclusions.Courses, v) {
		return nil
	}

	template, ok := e.rules.Courses[v]
	if !ok {
		e.logger.Warn("unknown course answer, assigning nothing", "course", v)
		return nil
	}
	return []Assignment{{
		Template: template,
		Category: CategoryCourse,
		Reason:   fmt.Sprintf("interested in course %q", v),
	}}
}

func (e *Engine) evaluateFinancial(rec record.Record) []Assignment {
	res := e.resolver.Resolve(rec, semantic.KeyFinancialSupport)
	if !res.Found || !record.IsAffirmative(res.Value) {
		return nil
	}
	return []Assignment{{
		Template: e.rules.Templates.DonationInfo,
		Category: CategoryFinancial,
		Reason:   "wants to give financially",
	}}
}

func (e *Engine) evaluateVolunteer(rec record.Record) []Assignment {
	res := e.resolver.Resolve(rec, semantic.KeyVolunteerInterest)
	if !res.Found || !record.IsAffirmative(res.Value) {
		return nil
	}
	return []Assignment{{
		Template: e.rules.Templates.VolunteerInfo,
		Category: CategoryVolunteer,
		Reason:   "wants to volunteer",
	}}
}
