// Package record defines the raw submission record type consumed by the
// resolution and assignment engines. A record is a flat map from raw field
// names (often natural-language form questions) to scalar or array values;
// no schema is assumed.
package record

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Record maps raw field names to their submitted values. Records are treated
// as immutable for the duration of one resolution and assignment pass.
type Record map[string]any

// Keys returns the raw field names in sorted order. Sorting gives the
// resolver a stable iteration order so fuzzy-match tie-breaks are
// deterministic.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fingerprint returns a stable hash of the record's field-name set.
// Two records sharing the same raw schema produce the same fingerprint
// regardless of their values. Used to key schema-scoped caches.
func (r Record) Fingerprint() string {
	h := fnv.New64a()
	for _, k := range r.Keys() {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 36)
}

// String coerces a record value to its string form. Arrays are joined with
// commas to match multi-select form exports. Nil yields the empty string.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		// JSON numbers decode as float64; render integers without a decimal.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, String(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsAffirmative reports whether a resolved value counts as an explicit "yes"
// for boolean-like fields. Accepts native booleans and the literal strings
// the production forms emit. Matching is case-sensitive on purpose: "True"
// or "da" never appear in real exports and are treated as no-answer.
func IsAffirmative(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "TRUE" || val == "DA"
	default:
		return false
	}
}
