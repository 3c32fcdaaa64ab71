package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/formroute/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "export.csv",
		"Numele tău,Email\nAna,ana@example.com\nIon,ion@example.com\n")

	r := source.NewReader()
	records, err := r.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Ana", records[0]["Numele tău"])
	assert.Equal(t, "ana@example.com", records[0]["Email"])
	assert.Equal(t, "Ion", records[1]["Numele tău"])
}

func TestReadCSVSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "export.csv",
		"A,B\n1,2\nonly-one-column\n3,4\n")

	r := source.NewReader()
	records, err := r.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[1]["A"])
}

func TestReadCSVMissingFile(t *testing.T) {
	r := source.NewReader()
	_, err := r.ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestReadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "export.jsonl",
		`{"Email":"ana@example.com","Donează":true}`+"\n\n"+
			`not json`+"\n"+
			`{"Email":"ion@example.com"}`+"\n")

	r := source.NewReader()
	records, err := r.ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "ana@example.com", records[0]["Email"])
	assert.Equal(t, true, records[0]["Donează"])
	assert.Equal(t, "ion@example.com", records[1]["Email"])
}

func TestReadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "a.CSV", "X\n1\n")
	jsonlPath := writeFile(t, dir, "b.jsonl", `{"X":"1"}`+"\n")

	r := source.NewReader()

	records, err := r.Read(csvPath)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = r.Read(jsonlPath)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "X\n")
	writeFile(t, dir, "b.csv", "X\n")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))
	writeFile(t, sub, "c.csv", "X\n")

	paths, err := source.Expand([]string{
		filepath.Join(dir, "**", "*.csv"),
		filepath.Join(dir, "a.csv"), // duplicate of the glob match
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(sub, "c.csv"),
	}, paths)
}

func TestExpandBadPattern(t *testing.T) {
	_, err := source.Expand([]string{"[oops"})
	require.Error(t, err)
}
