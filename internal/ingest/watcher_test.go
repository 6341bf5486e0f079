package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsJSONChanges(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "page")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	w, err := NewWatcher(dir, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, func(_ context.Context, paths []string) {
			changes <- paths
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(sub, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.json"), []byte("{}"), 0o644))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{filepath.Join(sub, "a.json")}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewWatcher_MissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil)
	assert.Error(t, err)
}
