package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/codegauge/testhelpers"
)

func startWatcher(t *testing.T, root string, exclude []string) (chan []string, context.CancelFunc, chan error) {
	t.Helper()
	w, err := New(root, exclude, 150*time.Millisecond)
	require.NoError(t, err)

	batches := make(chan []string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()
	return batches, cancel, done
}

func TestWatcher_DebouncesSourceChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file watcher test in short mode")
	}
	defer goleak.VerifyNone(t)

	fx := testhelpers.NewTestDataBuilder(t).AddFile("src/keep.txt", "x")
	batches, cancel, done := startWatcher(t, fx.Root(), nil)

	require.NoError(t, os.WriteFile(fx.Path("src/b.go"), []byte("package src\n"), 0o644))
	require.NoError(t, os.WriteFile(fx.Path("src/a.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(fx.Path("src/b.go"), []byte("package src\n\nfunc B() {}\n"), 0o644))

	select {
	case batch := <-batches:
		assert.Equal(t, []string{"src/a.py", "src/b.go"}, batch)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file watcher test in short mode")
	}
	defer goleak.VerifyNone(t)

	fx := testhelpers.NewTestDataBuilder(t).AddFile("main.go", "package main\n")
	batches, cancel, done := startWatcher(t, fx.Root(), nil)
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, os.MkdirAll(fx.Path("pkg/util"), 0o755))
	// give the watcher a moment to register the new directory
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(fx.Path("pkg/util/u.go"), []byte("package util\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch := <-batches:
			if assert.NotEmpty(t, batch) && batch[len(batch)-1] == "pkg/util/u.go" {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory was not reported")
		}
	}
}

func TestWatcher_HandleEventFilters(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := testhelpers.NewTestDataBuilder(t).
		AddFile("vendor/lib/x.go", "package lib\n").
		AddFile("app/a.go", "package app\n")
	w, err := New(fx.Root(), []string{"vendor/**"}, 0)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Equal(t, 300*time.Millisecond, w.debounce)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  string
		ok    bool
	}{
		{"source write", fsnotify.Event{Name: fx.Path("app/a.go"), Op: fsnotify.Write}, "app/a.go", true},
		{"chmod only", fsnotify.Event{Name: fx.Path("app/a.go"), Op: fsnotify.Chmod}, "", false},
		{"excluded dir", fsnotify.Event{Name: fx.Path("vendor/lib/x.go"), Op: fsnotify.Write}, "", false},
		{"not source", fsnotify.Event{Name: fx.Path("README.md"), Op: fsnotify.Create}, "", false},
		{"outside root", fsnotify.Event{Name: filepath.Join(filepath.Dir(fx.Root()), "other.go"), Op: fsnotify.Write}, "", false},
		{"removed source", fsnotify.Event{Name: fx.Path("app/gone.go"), Op: fsnotify.Remove}, "app/gone.go", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.handleEvent(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_MissingRoot(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := New(filepath.Join(t.TempDir(), "missing"), nil, time.Millisecond)
	assert.Error(t, err)
}
