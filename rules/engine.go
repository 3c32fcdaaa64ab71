package rules

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/metrics"
	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/semantic"
)

// defaultSalutation is used when a record carries no usable first name.
const defaultSalutation = "Prieten"

// FieldResolver is the resolution surface the engine needs.
// *resolver.Resolver satisfies it.
type FieldResolver interface {
	Resolve(rec record.Record, key semantic.Key) resolver.Resolution
}

// Engine evaluates every category against a record and produces the ordered,
// deduplicated assignment list.
type Engine struct {
	rules    config.RulesConfig
	resolver FieldResolver
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine over a field resolver.
func New(cfg *config.Config, fr FieldResolver, opts ...Option) *Engine {
	e := &Engine{
		rules:    cfg.Rules,
		resolver: fr,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assign runs every category evaluator in CategoryOrder, flattens the
// results, and deduplicates by template identifier keeping the first
// occurrence. Deterministic for identical input.
func (e *Engine) Assign(rec record.Record) []Assignment {
	var all []Assignment
	for _, cat := range CategoryOrder {
		all = append(all, e.evaluate(cat, rec)...)
	}

	seen := make(map[string]bool, len(all))
	out := make([]Assignment, 0, len(all))
	for _, a := range all {
		if seen[a.Template] {
			continue
		}
		seen[a.Template] = true
		out = append(out, a)
		metrics.RecordAssignment(a.Template, string(a.Category))
	}

	return out
}

func (e *Engine) evaluate(cat Category, rec record.Record) []Assignment {
	switch cat {
	case CategoryMission:
		return e.evaluateMission(rec)
	case CategoryPrayerAdoption:
		return e.evaluatePrayerAdoption(rec)
	case CategoryPrayerGroup:
		return e.evaluatePrayerGroup(rec)
	case CategoryCamp:
		return e.evaluateCamp(rec)
	case CategoryCourse:
		return e.evaluateCourse(rec)
	case CategoryFinancial:
		return e.evaluateFinancial(rec)
	case CategoryVolunteer:
		return e.evaluateVolunteer(rec)
	}
	return nil
}

// value resolves key and renders it as a trimmed-nothing string. A miss and
// an empty answer are both "".
func (e *Engine) value(rec record.Record, key semantic.Key) string {
	res := e.resolver.Resolve(rec, key)
	if !res.Found {
		return ""
	}
	return record.String(res.Value)
}

// ShouldProcess reports whether a record carries enough identity to act on.
// Records without a resolvable email or first name are skipped upstream.
func (e *Engine) ShouldProcess(rec record.Record) bool {
	email := e.value(rec, semantic.KeyEmail)
	name := e.value(rec, semantic.KeyFirstName)
	if email == "" || name == "" {
		e.logger.Debug("skipping record with missing identity",
			"has_email", email != "",
			"has_name", name != "")
		return false
	}
	return true
}

// Personalization returns the placeholder values templates interpolate.
func (e *Engine) Personalization(rec record.Record) map[string]string {
	name := e.value(rec, semantic.KeyFirstName)
	if name == "" {
		name = defaultSalutation
	}

	duration := e.value(rec, semantic.KeyMissionaryTime)
	if duration == "" {
		duration = e.value(rec, semantic.KeyEthnicGroupTime)
	}

	return map[string]string{
		"FirstName":      name,
		"Email":          e.value(rec, semantic.KeyEmail),
		"Location":       e.value(rec, semantic.KeyLocation),
		"Missionary":     e.value(rec, semantic.KeyMissionarySelection),
		"EthnicGroup":    e.value(rec, semantic.KeyEthnicGroupSelection),
		"PrayerDuration": duration,
	}
}

// Summary is the audit record of one assignment decision.
type Summary struct {
	DecisionID string       `json:"decision_id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Location   string       `json:"location"`
	Templates  []string     `json:"templates"`
	Reasons    []string     `json:"reasons"`
	Count      int          `json:"count"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Summarize builds the audit summary for a record and its assignments.
func (e *Engine) Summarize(rec record.Record, assignments []Assignment) Summary {
	name := e.value(rec, semantic.KeyFirstName)
	if name == "" {
		name = "Unknown"
	}

	templates := make([]string, len(assignments))
	reasons := make([]string, len(assignments))
	for i, a := range assignments {
		templates[i] = a.Template
		reasons[i] = a.Reason
	}

	return Summary{
		DecisionID: uuid.NewString(),
		Name:       name,
		Email:      e.value(rec, semantic.KeyEmail),
		Location:   e.value(rec, semantic.KeyLocation),
		Templates:  templates,
		Reasons:    reasons,
		Count:      len(assignments),
		Timestamp:  time.Now().UTC(),
	}
}
