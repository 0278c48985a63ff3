package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T, opts ...Option) (*Watcher, chan Event) {
	t.Helper()
	w, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	events := make(chan Event, 16)
	w.OnChange(func(e Event) { events <- e })
	return w, events
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	return Event{}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inkwell.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	w, events := newWatcher(t, WithDebounce(20*time.Millisecond))
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Watch(path))
	assert.Len(t, w.WatchedFiles(), 1)

	require.NoError(t, os.WriteFile(path, []byte("a = 2\n"), 0o644))
	e := waitEvent(t, events)
	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, e.Path)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inkwell.yaml")
	w, events := newWatcher(t, WithDebounce(200*time.Millisecond))
	require.NoError(t, w.Watch(path), "files may be created later")

	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
	}
	waitEvent(t, events)
	select {
	case e := <-events:
		t.Fatalf("burst reported twice: %v", e)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, events := newWatcher(t, WithDebounce(10*time.Millisecond))
	require.NoError(t, w.Watch(filepath.Join(dir, "inkwell.toml")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))
	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	dir := t.TempDir()
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Watch(filepath.Join(dir, "a.toml")))
	require.NoError(t, w.Unwatch(filepath.Join(dir, "a.toml")))
	assert.Empty(t, w.WatchedFiles())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(filepath.Join(dir, "a.toml")), ErrClosed)
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "rename", OpRename.String())
	assert.Equal(t, "unknown", Operation(42).String())
}
