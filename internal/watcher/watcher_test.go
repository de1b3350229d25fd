package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// collector records ingest callbacks.
type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) ingest(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

func (c *collector) waitFor(t *testing.T, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.count() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d ingests, got %d", n, c.count())
}

func TestWatcherIngestsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	w := NewWatcher([]string{dir}, []string{".jsonl"}, c.ingest, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drop.jsonl")
	if err := os.WriteFile(path, []byte(`{"text":"x"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c.waitFor(t, 1, 3*time.Second)
	c.mu.Lock()
	got := c.paths[0]
	c.mu.Unlock()
	if got != path {
		t.Errorf("ingested %q, want %q", got, path)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	w := NewWatcher([]string{dir}, []string{".jsonl"}, c.ingest, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if c.count() != 0 {
		t.Errorf("ingested %d files, want 0", c.count())
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	w := NewWatcher([]string{dir}, []string{".jsonl"}, c.ingest, WithDebounce(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drip.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.WriteString(`{"text":"line"}` + "\n"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	f.Close()

	c.waitFor(t, 1, 3*time.Second)
	time.Sleep(300 * time.Millisecond)
	if c.count() != 1 {
		t.Errorf("ingested %d times, want 1", c.count())
	}
}

func TestWatcherCreatesMissingRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet")
	w := NewWatcher([]string{dir}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("drop directory not created: %v", err)
	}
}

func TestSyncExisting(t *testing.T) {
	dir := t.TempDir()
	pre := filepath.Join(dir, "pre.jsonl")
	if err := os.WriteFile(pre, []byte(`{"text":"x"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.csv"), []byte("a,b"), 0644); err != nil {
		t.Fatal(err)
	}

	c := &collector{}
	w := NewWatcher([]string{dir}, []string{".jsonl"}, c.ingest)
	w.SyncExisting()

	if c.count() != 1 {
		t.Fatalf("synced %d files, want 1", c.count())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paths[0] != pre {
		t.Errorf("synced %q", c.paths[0])
	}
}

func TestDirectories(t *testing.T) {
	w := NewWatcher([]string{"/a", "/b"}, nil, nil)
	dirs := w.Directories()
	if len(dirs) != 2 || dirs[0] != "/a" {
		t.Errorf("dirs = %v", dirs)
	}
}
