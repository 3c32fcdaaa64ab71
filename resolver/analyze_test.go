package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/semantic"
)

// richSample mimics a well-formed export whose field names drifted from the
// configured primary questions but stay recognizable.
func richSample() record.Record {
	return record.Record{
		"Numele tău":                      "Ana",
		"Adresa ta de email":              "ana@example.com",
		"Număr de telefon":                "0700000000",
		"Unde locuiești ?":                "În România",
		"Adopți în rugăciune un misionar?": "Misionar",
		"Câmpul de misiune?":              "Da",
		"Financial help?":                 "TRUE",
		"Voluntariat":                     "DA",
		"Cursuri de pregătire":            "Kairos",
		"Tabere de misiune":               "Da",
	}
}

func TestAnalyzeRichSample(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	a := r.Analyze(richSample())

	assert.Equal(t, "Numele tău", a.Suggestions[semantic.KeyFirstName])
	assert.Equal(t, "Adresa ta de email", a.Suggestions[semantic.KeyEmail])
	assert.Equal(t, "Număr de telefon", a.Suggestions[semantic.KeyPhone])
	assert.Equal(t, "Financial help?", a.Suggestions[semantic.KeyFinancialSupport])

	assert.Equal(t, len(semantic.ImportantKeys()), a.ImportantFound)
	assert.True(t, a.ReadyForProduction)
	assert.False(t, a.MapperEnhanced)

	for key, score := range a.ConfidenceScores {
		assert.GreaterOrEqual(t, score, 0.7, "score for %s", key)
		assert.LessOrEqual(t, score, 1.0, "score for %s", key)
	}
}

func TestAnalyzeSparseSample(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	a := r.Analyze(record.Record{"Col A": "x", "Col B": "y"})

	assert.Empty(t, a.Suggestions)
	assert.Zero(t, a.ImportantFound)
	assert.False(t, a.ReadyForProduction)
}

func TestAnalyzeWithMapperFillsImportantKeys(t *testing.T) {
	fm := &fakeMapper{batch: map[semantic.Key]string{
		semantic.KeyFirstName: "Col A",
	}}
	r := resolver.New(config.DefaultConfig(), resolver.WithMapper(fm))

	sample := record.Record{"Col A": "Ana", "Adresa ta de email": "ana@example.com"}
	a := r.AnalyzeWithMapper(context.Background(), sample)

	require.True(t, a.MapperEnhanced)
	assert.Equal(t, "Col A", a.Suggestions[semantic.KeyFirstName])
	assert.Equal(t, 0.9, a.ConfidenceScores[semantic.KeyFirstName])
	assert.Equal(t, 2, a.ImportantFound)
	assert.Equal(t, int32(1), fm.calls.Load())
}

func TestAnalyzeWithMapperSkipsWhenConfident(t *testing.T) {
	fm := &fakeMapper{}
	r := resolver.New(config.DefaultConfig(), resolver.WithMapper(fm))

	a := r.AnalyzeWithMapper(context.Background(), richSample())

	assert.False(t, a.MapperEnhanced)
	assert.Zero(t, fm.calls.Load())
}

func TestAnalyzeWithMapperServiceFailure(t *testing.T) {
	fm := &fakeMapper{failErr: assert.AnError}
	r := resolver.New(config.DefaultConfig(), resolver.WithMapper(fm))

	sample := record.Record{"Col A": "Ana"}
	a := r.AnalyzeWithMapper(context.Background(), sample)

	assert.False(t, a.MapperEnhanced)
	assert.Empty(t, a.Suggestions)
}
