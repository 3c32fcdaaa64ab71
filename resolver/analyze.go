package resolver

import (
	"context"

	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/semantic"
)

const (
	// importanceWeight is the confidence bonus granted when all important
	// keys map, scaled by the fraction found.
	importanceWeight = 0.3

	// productionThreshold is the adjusted confidence above which a data
	// source is considered safe to process unattended.
	productionThreshold = 0.7

	// standardSufficient is the confidence above which AnalyzeWithMapper
	// skips the external service entirely.
	standardSufficient = 0.8

	// mapperConfidence is assigned to mappings obtained from the external
	// service, which validates membership but cannot be scored structurally.
	mapperConfidence = 0.9
)

// Analysis reports how well a new data source's field names map onto the
// semantic key set, before committing to process it.
type Analysis struct {
	AvailableFields  []string
	Suggestions      map[semantic.Key]string
	ConfidenceScores map[semantic.Key]float64

	Confidence     float64
	TotalKeys      int
	Mapped         int
	ImportantFound int

	// MapperEnhanced marks analyses where the external service filled in
	// keys fuzzy matching missed.
	MapperEnhanced bool

	// ReadyForProduction is true when confidence clears the production
	// threshold.
	ReadyForProduction bool
}

// Analyze inspects a sample record and suggests a raw field name for every
// semantic key that has a pattern list. It never touches the resolver caches.
func (r *Resolver) Analyze(sample record.Record) *Analysis {
	a := &Analysis{
		AvailableFields:  sample.Keys(),
		Suggestions:      make(map[semantic.Key]string),
		ConfidenceScores: make(map[semantic.Key]float64),
	}

	for _, key := range semantic.AllKeys() {
		if len(r.mapping.Patterns[key]) == 0 {
			continue
		}
		a.TotalKeys++

		field, score, ok := r.detect(sample, key)
		if !ok {
			continue
		}
		a.Suggestions[key] = field
		a.ConfidenceScores[key] = score
	}

	r.scoreAnalysis(a)

	r.logger.Info("data source analyzed",
		"fields", len(a.AvailableFields),
		"mapped", a.Mapped,
		"total_keys", a.TotalKeys,
		"important_found", a.ImportantFound,
		"confidence", a.Confidence,
		"ready", a.ReadyForProduction)

	return a
}

// AnalyzeWithMapper runs Analyze and, when confidence is unconvincing, asks
// the external mapping service about important keys fuzzy matching missed.
// Service failures leave the standard analysis untouched.
func (r *Resolver) AnalyzeWithMapper(ctx context.Context, sample record.Record) *Analysis {
	a := r.Analyze(sample)
	if a.Confidence > standardSufficient || r.mapper == nil {
		return a
	}

	var unmapped []semantic.Key
	for _, key := range semantic.ImportantKeys() {
		if _, ok := a.Suggestions[key]; !ok {
			unmapped = append(unmapped, key)
		}
	}
	if len(unmapped) == 0 {
		return a
	}

	results, err := r.mapper.MapFields(ctx, sample.Keys(), unmapped)
	if err != nil {
		r.logger.Warn("external analysis assistance failed", "error", err)
		return a
	}

	for key, field := range results {
		if _, ok := a.Suggestions[key]; ok {
			continue
		}
		a.Suggestions[key] = field
		a.ConfidenceScores[key] = mapperConfidence
		a.MapperEnhanced = true
	}

	if a.MapperEnhanced {
		r.scoreAnalysis(a)
		r.logger.Info("analysis enhanced by external mapping",
			"mapped", a.Mapped,
			"confidence", a.Confidence,
			"ready", a.ReadyForProduction)
	}

	return a
}

// scoreAnalysis recomputes the aggregate confidence from the suggestion set.
func (r *Resolver) scoreAnalysis(a *Analysis) {
	a.Mapped = len(a.Suggestions)

	a.ImportantFound = 0
	important := semantic.ImportantKeys()
	for _, key := range important {
		if _, ok := a.Suggestions[key]; ok {
			a.ImportantFound++
		}
	}

	base := 0.0
	if a.TotalKeys > 0 {
		base = float64(a.Mapped) / float64(a.TotalKeys)
	}
	bonus := float64(a.ImportantFound) / float64(len(important)) * importanceWeight

	a.Confidence = minFloat(base+bonus, 1.0)
	a.ReadyForProduction = a.Confidence > productionThreshold
}
