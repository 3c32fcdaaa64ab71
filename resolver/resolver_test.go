package resolver_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/semantic"
	"github.com/c360studio/formroute/similarity"
)

// fakeMapper implements resolver.Mapper with canned answers.
type fakeMapper struct {
	calls   atomic.Int32
	field   string
	batch   map[semantic.Key]string
	failErr error
}

func (f *fakeMapper) MapField(_ context.Context, _ []string, _ semantic.Key) (string, error) {
	f.calls.Add(1)
	if f.failErr != nil {
		return "", f.failErr
	}
	return f.field, nil
}

func (f *fakeMapper) MapFields(_ context.Context, _ []string, _ []semantic.Key) (map[semantic.Key]string, error) {
	f.calls.Add(1)
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.batch, nil
}

func TestResolvePrimaryMatch(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	rec := record.Record{"Email": "ana@example.com"}
	res := r.Resolve(rec, semantic.KeyEmail)

	require.True(t, res.Found)
	assert.Equal(t, "ana@example.com", res.Value)
	assert.Equal(t, "Email", res.RawField)
	assert.Equal(t, resolver.SourcePrimary, res.Source)
}

func TestResolveFuzzyMatch(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	// The raw name drifted away from the configured primary question.
	rec := record.Record{"Financial help?": "TRUE"}
	res := r.Resolve(rec, semantic.KeyFinancialSupport)

	require.True(t, res.Found)
	assert.Equal(t, "TRUE", res.Value)
	assert.Equal(t, "Financial help?", res.RawField)
	assert.Equal(t, resolver.SourceFuzzy, res.Source)
	assert.GreaterOrEqual(t, res.Score, 0.7)
}

func TestResolveCacheTransparency(t *testing.T) {
	var scorerCalls atomic.Int32
	r := resolver.New(config.DefaultConfig(),
		resolver.WithScorer(func(field string, patterns []string) float64 {
			scorerCalls.Add(1)
			return similarity.Score(field, patterns)
		}))

	recA := record.Record{"Adresa ta de email": "ana@example.com"}
	recB := record.Record{"Adresa ta de email": "ion@example.com"}

	first := r.Resolve(recA, semantic.KeyEmail)
	require.True(t, first.Found)
	assert.Equal(t, resolver.SourceFuzzy, first.Source)
	callsAfterFirst := scorerCalls.Load()
	require.Positive(t, callsAfterFirst)

	// Same schema, different values: must come from the cache without
	// re-invoking the scorer.
	second := r.Resolve(recB, semantic.KeyEmail)
	require.True(t, second.Found)
	assert.Equal(t, resolver.SourceCache, second.Source)
	assert.Equal(t, "ion@example.com", second.Value)
	assert.Equal(t, callsAfterFirst, scorerCalls.Load())
}

func TestResolveSchemaAwareCacheIsolation(t *testing.T) {
	var scorerCalls atomic.Int32
	cfg := config.DefaultConfig()
	require.True(t, cfg.Mapping.SchemaAwareCache)

	r := resolver.New(cfg,
		resolver.WithScorer(func(field string, patterns []string) float64 {
			scorerCalls.Add(1)
			return similarity.Score(field, patterns)
		}))

	recA := record.Record{"Adresa ta de email": "ana@example.com"}
	recB := record.Record{"Adresa ta de email": "ion@example.com", "Extra": "x"}

	require.True(t, r.Resolve(recA, semantic.KeyEmail).Found)
	callsAfterFirst := scorerCalls.Load()

	// Different schema fingerprint: the cached mapping must not be reused
	// blindly, so the scorer runs again.
	require.True(t, r.Resolve(recB, semantic.KeyEmail).Found)
	assert.Greater(t, scorerCalls.Load(), callsAfterFirst)
}

func TestResolveThresholdBoundary(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mapping.FuzzyThreshold = 0.7

	rec := record.Record{"some field": "v"}

	at := resolver.New(cfg, resolver.WithScorer(func(string, []string) float64 {
		return 0.7
	}))
	res := at.Resolve(rec, semantic.KeyPhone)
	require.True(t, res.Found)
	assert.Equal(t, resolver.SourceFuzzy, res.Source)

	below := resolver.New(cfg, resolver.WithScorer(func(string, []string) float64 {
		return 0.699
	}))
	res = below.Resolve(rec, semantic.KeyPhone)
	assert.False(t, res.Found)
	assert.Equal(t, resolver.SourceNone, res.Source)
}

func TestResolveLegacyFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mapping.Legacy = map[semantic.Key]string{semantic.KeyAge: "Varsta"}

	r := resolver.New(cfg)
	res := r.Resolve(record.Record{"Varsta": 23.0}, semantic.KeyAge)

	require.True(t, res.Found)
	assert.Equal(t, 23.0, res.Value)
	assert.Equal(t, resolver.SourceLegacy, res.Source)
}

func TestResolveLiteralKeyFallback(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	res := r.Resolve(record.Record{"CONSENT": "da"}, semantic.KeyConsent)

	require.True(t, res.Found)
	assert.Equal(t, "da", res.Value)
	assert.Equal(t, resolver.SourceLiteral, res.Source)
}

func TestResolveEmptyRecord(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	res := r.Resolve(record.Record{}, semantic.KeyEmail)

	assert.False(t, res.Found)
	assert.Nil(t, res.Value)
	assert.Equal(t, resolver.SourceNone, res.Source)
}

func TestResolveEmptyStringIsAValue(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	res := r.Resolve(record.Record{"Email": ""}, semantic.KeyEmail)

	require.True(t, res.Found)
	assert.Equal(t, "", res.Value)
}

func TestResolveWithMapperUsed(t *testing.T) {
	fm := &fakeMapper{field: "Electronic contact"}
	r := resolver.New(config.DefaultConfig(), resolver.WithMapper(fm))

	rec := record.Record{"Electronic contact": "ana@example.com"}
	res := r.ResolveWithMapper(context.Background(), rec, semantic.KeyEmail)

	require.True(t, res.Found)
	assert.Equal(t, resolver.SourceMapper, res.Source)
	assert.Equal(t, "ana@example.com", res.Value)
	assert.Equal(t, int32(1), fm.calls.Load())

	// The mapper answer is now in the mapping cache; a second resolution
	// must not re-issue the call.
	res = r.ResolveWithMapper(context.Background(), rec, semantic.KeyEmail)
	require.True(t, res.Found)
	assert.Equal(t, resolver.SourceCache, res.Source)
	assert.Equal(t, int32(1), fm.calls.Load())
}

func TestResolveWithMapperFailureFallsThrough(t *testing.T) {
	fm := &fakeMapper{failErr: errors.New("service down")}
	cfg := config.DefaultConfig()
	cfg.Mapping.Legacy = map[semantic.Key]string{semantic.KeyEmail: "Old email column"}

	r := resolver.New(cfg, resolver.WithMapper(fm))

	rec := record.Record{"Old email column": "ana@example.com"}
	res := r.ResolveWithMapper(context.Background(), rec, semantic.KeyEmail)

	require.True(t, res.Found)
	assert.Equal(t, resolver.SourceLegacy, res.Source)
}

func TestResolveWithoutMapperConfigured(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	res := r.ResolveWithMapper(context.Background(), record.Record{"x": "y"}, semantic.KeyEmail)
	assert.False(t, res.Found)
}

func TestClearCaches(t *testing.T) {
	var scorerCalls atomic.Int32
	r := resolver.New(config.DefaultConfig(),
		resolver.WithScorer(func(field string, patterns []string) float64 {
			scorerCalls.Add(1)
			return similarity.Score(field, patterns)
		}))

	rec := record.Record{"Adresa ta de email": "ana@example.com"}
	require.True(t, r.Resolve(rec, semantic.KeyEmail).Found)
	callsAfterFirst := scorerCalls.Load()

	r.ClearCaches()

	res := r.Resolve(rec, semantic.KeyEmail)
	require.True(t, res.Found)
	assert.Equal(t, resolver.SourceFuzzy, res.Source)
	assert.Greater(t, scorerCalls.Load(), callsAfterFirst)
}

func TestResolutionReason(t *testing.T) {
	r := resolver.New(config.DefaultConfig())

	res := r.Resolve(record.Record{"Email": "a@b.c"}, semantic.KeyEmail)
	assert.Contains(t, res.Reason(), "primary")

	res = r.Resolve(record.Record{}, semantic.KeyEmail)
	assert.Contains(t, res.Reason(), "not resolved")
}
