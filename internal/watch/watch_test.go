package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog")
	if err := os.Mkdir(catalog, 0o755); err != nil {
		t.Fatal(err)
	}
	projectFile := filepath.Join(dir, "stack.yaml")
	if err := os.WriteFile(projectFile, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{projectFile, catalog})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.fs.Close()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"project write", fsnotify.Event{Name: projectFile, Op: fsnotify.Write}, true},
		{"project chmod", fsnotify.Event{Name: projectFile, Op: fsnotify.Chmod}, false},
		{"sibling of project", fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, false},
		{"catalog document", fsnotify.Event{Name: filepath.Join(catalog, "pla.toml"), Op: fsnotify.Create}, true},
		{"catalog other ext", fsnotify.Event{Name: filepath.Join(catalog, "notes.txt"), Op: fsnotify.Write}, false},
		{"catalog hidden", fsnotify.Event{Name: filepath.Join(catalog, ".pla.json"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNew_MissingPath(t *testing.T) {
	if _, err := New([]string{filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected an error for a missing path")
	}
}

func TestRun_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stack.yaml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{path}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			calls.Add(1)
			return nil
		})
	}()

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte(time.Now().String()), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if calls.Load() == 0 {
		t.Error("onChange was never called")
	}
}
