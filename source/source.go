// Package source reads raw submission records from exported files. It speaks
// two formats: CSV with a header row of raw field names, and JSONL with one
// object per line. A malformed row is logged and skipped; one bad submission
// never aborts a batch.
package source

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/formroute/record"
)

// Reader loads records from export files.
type Reader struct {
	logger *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the reader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read dispatches on file extension: .csv goes to ReadCSV, everything else
// is treated as JSONL.
func (r *Reader) Read(path string) ([]record.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return r.ReadCSV(path)
	}
	return r.ReadJSONL(path)
}

// ReadCSV reads an exported CSV file. The header row supplies the raw field
// names; every data row becomes one record. Rows with a mismatched column
// count are skipped.
func (r *Reader) ReadCSV(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	var records []record.Record
	line := 1
	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.logger.Warn("skipping malformed csv row",
				"path", path,
				"line", line,
				"error", err)
			continue
		}
		if len(row) != len(header) {
			r.logger.Warn("skipping csv row with wrong column count",
				"path", path,
				"line", line,
				"columns", len(row),
				"expected", len(header))
			continue
		}

		rec := make(record.Record, len(header))
		for i, name := range header {
			rec[name] = row[i]
		}
		records = append(records, rec)
	}

	r.logger.Debug("read csv export", "path", path, "records", len(records))
	return records, nil
}

// ReadJSONL reads a file with one JSON object per line. Blank lines are
// ignored; unparseable lines are skipped.
func (r *Reader) ReadJSONL(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records []record.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec record.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			r.logger.Warn("skipping malformed jsonl line",
				"path", path,
				"line", line,
				"error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	r.logger.Debug("read jsonl export", "path", path, "records", len(records))
	return records, nil
}

// Expand resolves glob patterns (doublestar syntax, so `data/**/*.csv`
// works) into a sorted, deduplicated path list.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}
