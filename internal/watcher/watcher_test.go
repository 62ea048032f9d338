package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_reportsSettledDocument(t *testing.T) {
	dir := t.TempDir()
	var arrived []string
	var mu sync.Mutex

	w := NewWatcher(dir, func(path string) {
		mu.Lock()
		arrived = append(arrived, path)
		mu.Unlock()
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(dir, "rechnung.pdf")
	if err := os.WriteFile(fPath, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(arrived) == 1 && arrived[0] == fPath
	})
	if !ok {
		mu.Lock()
		t.Errorf("arrived = %v", arrived)
		mu.Unlock()
	}
}

func TestWatcher_ignoresDisallowedExtensions(t *testing.T) {
	dir := t.TempDir()
	var count int
	var mu sync.Mutex

	w := NewWatcher(dir, func(path string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notiz.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("callbacks for disallowed extension = %d", count)
	}
}

func TestWatcher_debounceCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	var count int
	var mu sync.Mutex

	w := NewWatcher(dir, func(path string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, WithDebounce(150*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(dir, "gross.pdf")
	f, err := os.Create(fPath)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.Write([]byte("chunk ")); err != nil {
			t.Fatal(err)
		}
		f.Sync()
		time.Sleep(20 * time.Millisecond)
	}
	f.Close()

	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	})
	mu.Lock()
	defer mu.Unlock()
	if !ok || count != 1 {
		t.Errorf("callbacks = %d, want exactly 1", count)
	}
}

func TestWatcher_removedFileCancelsCallback(t *testing.T) {
	dir := t.TempDir()
	var count int
	var mu sync.Mutex

	w := NewWatcher(dir, func(path string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, WithDebounce(300*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(dir, "kurzlebig.txt")
	if err := os.WriteFile(fPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(fPath); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("callbacks after immediate remove = %d", count)
	}
}

func TestWatcher_createsMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "import")
	w := NewWatcher(dir, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("import dir not created: %v", err)
	}
	if w.Dir() != dir {
		t.Errorf("Dir() = %q", w.Dir())
	}
}

func TestWatcher_startTwiceIsNoop(t *testing.T) {
	w := NewWatcher(t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start: %v", err)
	}
}
