// Package resolver maps semantic keys to raw field names in free-form survey
// records. Resolution runs a tiered pipeline: exact primary name, cached
// mapping, fuzzy pattern match, optional external mapping service, legacy
// name table, and finally the key itself as a literal field name. A miss is a
// value, not an error.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/mapper"
	"github.com/c360studio/formroute/metrics"
	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/semantic"
	"github.com/c360studio/formroute/similarity"
)

// boostCeiling is the score above which confidence boosts no longer apply.
// A match already scoring this high does not need help.
const boostCeiling = 0.9

// Source identifies which pipeline stage produced a resolution.
type Source string

const (
	SourcePrimary Source = "primary"
	SourceCache   Source = "cache"
	SourceFuzzy   Source = "fuzzy"
	SourceMapper  Source = "mapper"
	SourceLegacy  Source = "legacy"
	SourceLiteral Source = "literal"
	SourceNone    Source = "none"
)

// Resolution is the outcome of resolving one semantic key against one record.
// Found false means every pipeline stage missed; Value is then nil.
type Resolution struct {
	Key      semantic.Key
	Value    any
	RawField string
	Source   Source
	Score    float64
	Found    bool
}

// Reason describes the resolution for audit output.
func (r Resolution) Reason() string {
	switch r.Source {
	case SourceFuzzy:
		return fmt.Sprintf("%s resolved to %q by fuzzy match (score %.2f)", r.Key, r.RawField, r.Score)
	case SourceNone:
		return fmt.Sprintf("%s not resolved", r.Key)
	default:
		return fmt.Sprintf("%s resolved to %q via %s", r.Key, r.RawField, r.Source)
	}
}

// ScoreFunc is the similarity scorer signature. Injectable for tests that
// count scorer invocations.
type ScoreFunc func(fieldName string, patterns []string) float64

// Mapper is the external mapping service surface the resolver depends on.
// *mapper.Client satisfies it.
type Mapper interface {
	MapField(ctx context.Context, availableFields []string, key semantic.Key) (string, error)
	MapFields(ctx context.Context, availableFields []string, keys []semantic.Key) (map[semantic.Key]string, error)
}

type lookupKey struct {
	fingerprint string
	key         semantic.Key
}

type lookupEntry struct {
	field string
	at    time.Time
}

// Resolver resolves semantic keys against records. Safe for concurrent use;
// the two caches are guarded by a single RWMutex.
type Resolver struct {
	mapping   config.MappingConfig
	mapperTTL time.Duration

	logger *slog.Logger
	scorer ScoreFunc
	mapper Mapper
	now    func() time.Time

	mu sync.RWMutex
	// mappingCache remembers fuzzy and mapper hits: schema fingerprint (or
	// "" when the cache is not schema-aware) to key to raw field name.
	mappingCache map[string]map[semantic.Key]string
	// lookupCache remembers external mapper answers with a TTL, so repeat
	// lookups for the same schema and key never re-issue the call.
	lookupCache map[lookupKey]lookupEntry
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMapper attaches an external mapping service used by ResolveWithMapper
// and AnalyzeWithMapper.
func WithMapper(m Mapper) Option {
	return func(r *Resolver) {
		r.mapper = m
	}
}

// WithScorer overrides the similarity scorer, mainly for tests.
func WithScorer(fn ScoreFunc) Option {
	return func(r *Resolver) {
		r.scorer = fn
	}
}

// WithClock overrides the time source for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a Resolver from the mapping configuration. Each Resolver owns
// its caches; callers wanting isolation construct separate instances.
func New(cfg *config.Config, opts ...Option) *Resolver {
	r := &Resolver{
		mapping:      cfg.Mapping,
		mapperTTL:    cfg.Mapper.CacheTTL,
		logger:       slog.Default(),
		scorer:       similarity.Score,
		now:          time.Now,
		mappingCache: make(map[string]map[semantic.Key]string),
		lookupCache:  make(map[lookupKey]lookupEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the synchronous pipeline: primary, cache, fuzzy, legacy,
// literal. It never calls the external mapping service.
func (r *Resolver) Resolve(rec record.Record, key semantic.Key) Resolution {
	if res, ok := r.resolveFast(rec, key); ok {
		return res
	}
	return r.resolveSlow(rec, key)
}

// ResolveWithMapper runs the full pipeline, consulting the external mapping
// service after fuzzy matching fails. Mapper failures fall through to the
// legacy stages; they are never fatal.
func (r *Resolver) ResolveWithMapper(ctx context.Context, rec record.Record, key semantic.Key) Resolution {
	if res, ok := r.resolveFast(rec, key); ok {
		return res
	}
	if res, ok := r.resolveExternal(ctx, rec, key); ok {
		return res
	}
	return r.resolveSlow(rec, key)
}

// MapperView adapts ResolveWithMapper to the single-argument Resolve shape,
// for callers that take a plain resolver but want the external fallback.
type MapperView struct {
	ctx context.Context
	r   *Resolver
}

// WithMapperContext returns a view whose Resolve consults the external
// mapping service. Mapper calls are bounded by ctx.
func (r *Resolver) WithMapperContext(ctx context.Context) *MapperView {
	return &MapperView{ctx: ctx, r: r}
}

// Resolve runs the full pipeline including the external mapping service.
func (v *MapperView) Resolve(rec record.Record, key semantic.Key) Resolution {
	return v.r.ResolveWithMapper(v.ctx, rec, key)
}

// resolveFast covers the stages before the external fallback.
func (r *Resolver) resolveFast(rec record.Record, key semantic.Key) (Resolution, bool) {
	// Exact primary name for the current form revision.
	if primary, ok := r.mapping.Primary[key]; ok {
		if v, present := rec[primary]; present {
			return r.hit(key, primary, v, SourcePrimary, 1.0), true
		}
	}

	// Previously resolved mapping for this schema.
	if cached, ok := r.cachedMapping(rec, key); ok {
		if v, present := rec[cached]; present {
			metrics.RecordCacheHit("mapping")
			return r.hit(key, cached, v, SourceCache, 1.0), true
		}
	}

	// Fuzzy match over every raw field name.
	if field, score, ok := r.detect(rec, key); ok {
		r.cacheMapping(rec, key, field)
		metrics.FuzzyScore.Observe(score)
		return r.hit(key, field, rec[field], SourceFuzzy, score), true
	}

	return Resolution{}, false
}

// resolveSlow covers the backward-compatibility stages after everything
// smarter has failed.
func (r *Resolver) resolveSlow(rec record.Record, key semantic.Key) Resolution {
	if legacy, ok := r.mapping.Legacy[key]; ok {
		if v, present := rec[legacy]; present {
			return r.hit(key, legacy, v, SourceLegacy, 1.0)
		}
	}

	if v, present := rec[key.String()]; present {
		return r.hit(key, key.String(), v, SourceLiteral, 1.0)
	}

	metrics.RecordResolution(key.String(), string(SourceNone))
	return Resolution{Key: key, Source: SourceNone}
}

// detect finds the best fuzzy candidate for key among the record's field
// names. Ties break toward the lexicographically first field name because
// Keys is sorted and selection is strictly-greater. The threshold boundary is
// inclusive. Does not touch the cache.
func (r *Resolver) detect(rec record.Record, key semantic.Key) (string, float64, bool) {
	patterns := r.mapping.Patterns[key]
	if len(patterns) == 0 || len(rec) == 0 {
		return "", 0, false
	}

	best := ""
	bestScore := 0.0
	for _, field := range rec.Keys() {
		score := r.scorer(field, patterns)
		if score < boostCeiling {
			score = minFloat(score+key.Boost(field), 1.0)
		}
		if score > bestScore {
			best = field
			bestScore = score
		}
	}

	if best == "" || bestScore < r.mapping.FuzzyThreshold {
		return "", 0, false
	}
	return best, bestScore, true
}

// resolveExternal consults the mapping service, shielded by the TTL lookup
// cache.
func (r *Resolver) resolveExternal(ctx context.Context, rec record.Record, key semantic.Key) (Resolution, bool) {
	if r.mapper == nil {
		return Resolution{}, false
	}

	scope := r.cacheScope(rec)
	lk := lookupKey{fingerprint: scope, key: key}

	r.mu.RLock()
	entry, ok := r.lookupCache[lk]
	r.mu.RUnlock()
	if ok && r.now().Sub(entry.at) < r.mapperTTL {
		if v, present := rec[entry.field]; present {
			metrics.RecordCacheHit("lookup")
			return r.hit(key, entry.field, v, SourceMapper, 1.0), true
		}
	}

	start := r.now()
	field, err := r.mapper.MapField(ctx, rec.Keys(), key)
	elapsed := r.now().Sub(start).Seconds()
	if err != nil {
		if errors.Is(err, mapper.ErrNoMatch) {
			metrics.RecordMapperCall("no_match", elapsed)
		} else {
			metrics.RecordMapperCall("error", elapsed)
			r.logger.Warn("external mapping failed",
				"key", key.String(),
				"error", err)
		}
		return Resolution{}, false
	}
	metrics.RecordMapperCall("ok", elapsed)

	v, present := rec[field]
	if !present {
		return Resolution{}, false
	}

	r.mu.Lock()
	r.lookupCache[lk] = lookupEntry{field: field, at: r.now()}
	r.mu.Unlock()
	r.cacheMapping(rec, key, field)

	return r.hit(key, field, v, SourceMapper, 1.0), true
}

func (r *Resolver) hit(key semantic.Key, field string, value any, source Source, score float64) Resolution {
	metrics.RecordResolution(key.String(), string(source))
	return Resolution{
		Key:      key,
		Value:    value,
		RawField: field,
		Source:   source,
		Score:    score,
		Found:    true,
	}
}

// cacheScope returns the mapping-cache partition for a record: its schema
// fingerprint when the cache is schema-aware, otherwise a single shared
// partition.
func (r *Resolver) cacheScope(rec record.Record) string {
	if r.mapping.SchemaAwareCache {
		return rec.Fingerprint()
	}
	return ""
}

func (r *Resolver) cachedMapping(rec record.Record, key semantic.Key) (string, bool) {
	scope := r.cacheScope(rec)

	r.mu.RLock()
	defer r.mu.RUnlock()
	byKey, ok := r.mappingCache[scope]
	if !ok {
		return "", false
	}
	field, ok := byKey[key]
	return field, ok
}

func (r *Resolver) cacheMapping(rec record.Record, key semantic.Key, field string) {
	scope := r.cacheScope(rec)

	r.mu.Lock()
	defer r.mu.Unlock()
	byKey, ok := r.mappingCache[scope]
	if !ok {
		byKey = make(map[semantic.Key]string)
		r.mappingCache[scope] = byKey
	}
	byKey[key] = field

	r.logger.Debug("cached field mapping",
		"key", key.String(),
		"field", field)
}

// ClearCaches drops both caches. Intended for administrative reload after a
// form revision changes field names.
func (r *Resolver) ClearCaches() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappingCache = make(map[string]map[semantic.Key]string)
	r.lookupCache = make(map[lookupKey]lookupEntry)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
