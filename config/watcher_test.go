package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher("", func(*Config) {})
	assert.Error(t, err)

	_, err = NewWatcher("formroute.yaml", nil)
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formroute.yaml")
	require.NoError(t, DefaultConfig().SaveToFile(path))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	cfg := DefaultConfig()
	cfg.Mapping.FuzzyThreshold = 0.85
	require.NoError(t, cfg.SaveToFile(path))

	select {
	case got := <-reloaded:
		assert.Equal(t, 0.85, got.Mapping.FuzzyThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload did not fire")
	}

	cancel()
	<-done
}

func TestWatcher_KeepsPreviousOnInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formroute.yaml")
	require.NoError(t, DefaultConfig().SaveToFile(path))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		reloaded <- cfg
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	// Broken YAML must not reach the callback.
	require.NoError(t, os.WriteFile(path, []byte(":: not yaml ::"), 0644))

	select {
	case <-reloaded:
		t.Fatal("invalid config should not trigger reload callback")
	case <-time.After(500 * time.Millisecond):
	}
}
