package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant_MatchesOnlyWatchedFile(t *testing.T) {
	t.Parallel()

	w := &Watcher{}
	base := "tracker.xlsx"

	cases := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/inbox/tracker.xlsx", fsnotify.Write, true},
		{"/inbox/tracker.xlsx", fsnotify.Create, true},
		{"/inbox/tracker.xlsx", fsnotify.Rename, true},
		{"/inbox/tracker.xlsx", fsnotify.Chmod, false},
		{"/inbox/other.xlsx", fsnotify.Write, false},
		// editor temp file during a save
		{"/inbox/~$tracker.xlsx", fsnotify.Write, false},
	}
	for _, tc := range cases {
		got := w.relevant(fsnotify.Event{Name: tc.name, Op: tc.op}, base)
		if got != tc.want {
			t.Fatalf("%s %v: want %v got %v", tc.name, tc.op, tc.want, got)
		}
	}
}

func TestWatcher_FiresAfterSettle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.xlsx")

	fired := make(chan struct{}, 1)
	w, err := New(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// a quick rewrite must collapse into one trigger
	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(10 * time.Second):
		t.Fatalf("watcher did not fire")
	}

	// nothing further queued once the burst settled
	select {
	case <-fired:
		t.Fatalf("debounce collapsed burst should fire once")
	case <-time.After(3 * time.Second):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.xlsx")

	fired := make(chan struct{}, 1)
	w, err := New(path, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-fired:
		t.Fatalf("unrelated file must not trigger")
	case <-time.After(3 * time.Second):
	}
}
