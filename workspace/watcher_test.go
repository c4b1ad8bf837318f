package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherPoll(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.php": phpSource, "b.css": cssSource})
	ws := New(dir, nil)
	w := NewWatcher(ws, time.Hour)

	updated, removed := w.Poll()
	assert.Equal(t, 2, updated)
	assert.Equal(t, 0, removed)

	updated, removed = w.Poll()
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, removed)

	path := filepath.Join(dir, "a.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\nfunction changed() {}\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	updated, _ = w.Poll()
	assert.Equal(t, 1, updated)
	assert.NotEmpty(t, ws.Definition("changed"))

	require.NoError(t, os.Remove(filepath.Join(dir, "b.css")))
	_, removed = w.Poll()
	assert.Equal(t, 1, removed)
	assert.Nil(t, ws.Get(filepath.Join(dir, "b.css")))
}

func TestWatcherStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := writeFiles(t, map[string]string{"a.js": jsSource})
	ws := New(dir, nil)
	w := NewWatcher(ws, 5*time.Millisecond)

	w.Start(context.Background())
	assert.NotNil(t, ws.Get(filepath.Join(dir, "a.js")))
	time.Sleep(20 * time.Millisecond)
	w.Stop()
}

func TestWatcherContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ws := New(t.TempDir(), nil)
	w := NewWatcher(ws, 0)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	w.done.Wait()
}
