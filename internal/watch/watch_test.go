package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherBatchesWriteEvents(t *testing.T) {
	tmpDir := t.TempDir()
	contentDir := filepath.Join(tmpDir, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatalf("mkdir content dir: %v", err)
	}

	w, err := New([]string{contentDir}, Options{Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	testFile := filepath.Join(contentDir, "a.md")
	if err := os.WriteFile(testFile, []byte("# hi"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	select {
	case batch, ok := <-w.Events:
		if !ok {
			t.Fatal("events channel closed unexpectedly")
		}
		if len(batch.Changed) == 0 {
			t.Error("expected at least one changed path in batch")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a batch")
	}
}

func TestWatcherIgnoresOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	outputDir := filepath.Join(tmpDir, "output")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatalf("mkdir output dir: %v", err)
	}

	w, err := New([]string{tmpDir}, Options{
		IgnoreDirs: []string{outputDir},
		Debounce:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(outputDir, "index.html"), []byte("<html>"), 0o644); err != nil {
		t.Fatalf("write output file: %v", err)
	}

	select {
	case <-w.Events:
		t.Fatal("expected no batch for a change inside the ignored output dir")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherFlagsConfigChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bengal.toml")
	if err := os.WriteFile(configPath, []byte("title = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("seed config file: %v", err)
	}

	w, err := New([]string{tmpDir}, Options{
		ConfigPath: configPath,
		Debounce:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(configPath, []byte("title = \"y\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config file: %v", err)
	}

	select {
	case batch, ok := <-w.Events:
		if !ok {
			t.Fatal("events channel closed unexpectedly")
		}
		if !batch.ConfigChanged {
			t.Error("expected ConfigChanged to be true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a batch")
	}
}
