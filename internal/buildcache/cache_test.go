package buildcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsChangedNewFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	if !c.IsChanged("/does/not/exist.md") {
		t.Error("expected unknown file to be changed")
	}
}

func TestTouchWithoutChangeIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(filepath.Join(dir, "cache.json"))
	if err := c.UpdateFile(path); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if c.IsChanged(path) {
		t.Error("expected a touched file with unchanged content to be reported unchanged")
	}
}

func TestContentChangeDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	os.WriteFile(path, []byte("hello"), 0o644)

	c := New(filepath.Join(dir, "cache.json"))
	c.UpdateFile(path)

	os.WriteFile(path, []byte("goodbye, much longer content"), 0o644)
	if !c.IsChanged(path) {
		t.Error("expected content change to be detected")
	}
}

func TestDeferredFingerprintNotAppliedUntilFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tmpl.html")
	os.WriteFile(path, []byte("{{ . }}"), 0o644)

	c := New(filepath.Join(dir, "cache.json"))
	if err := c.UpdateFileDeferred(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Fingerprints[path]; ok {
		t.Fatal("expected deferred update to not apply immediately")
	}

	c.Flush()
	if _, ok := c.Fingerprints[path]; !ok {
		t.Error("expected flush to apply pending fingerprint")
	}
}

func TestResetPendingUpdatesDiscards(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tmpl.html")
	os.WriteFile(path, []byte("x"), 0o644)

	c := New(filepath.Join(dir, "cache.json"))
	c.UpdateFileDeferred(path)
	c.ResetPendingUpdates()
	c.Flush()

	if _, ok := c.Fingerprints[path]; ok {
		t.Error("expected reset to discard pending updates")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")

	c := New(cachePath)
	c.ConfigHash = "abc123"
	c.Tags["a.md"] = []string{"go"}
	c.dirty = true

	if err := c.Save(false); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ConfigHash != "abc123" {
		t.Errorf("expected config hash to survive round-trip, got %q", loaded.ConfigHash)
	}
	if len(loaded.Tags["a.md"]) != 1 {
		t.Errorf("expected tags to survive round-trip, got %v", loaded.Tags)
	}
}

func TestLoadCorruptFileReturnsFresh(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	os.WriteFile(cachePath, []byte("not json"), 0o644)

	c, err := Load(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if c.ConfigHash != "" {
		t.Error("expected fresh cache from corrupt file")
	}
}

func TestLoadVersionMismatchReturnsFresh(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	os.WriteFile(cachePath, []byte(`{"version":999,"config_hash":"old"}`), 0o644)

	c, err := Load(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if c.ConfigHash != "" {
		t.Error("expected fresh cache from version mismatch")
	}
}

func TestValidateConfigMismatchClearsState(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	c.Fingerprints["a.md"] = &Fingerprint{Hash: "x"}
	c.ConfigHash = "old"

	if ok := c.ValidateConfig("new"); ok {
		t.Error("expected mismatch to return false")
	}
	if len(c.Fingerprints) != 0 {
		t.Error("expected config mismatch to clear fingerprints")
	}
	if !c.RequiresFullRebuild() {
		t.Error("expected RequiresFullRebuild to be true after mismatch")
	}
}

func TestShouldBypassExplicitChanged(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	explicit := map[string]bool{"a.md": true}
	if !c.ShouldBypass("a.md", explicit) {
		t.Error("expected explicit changed path to bypass")
	}
}

func TestInvalidateFingerprintReturnsWhetherRemoved(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	c.Fingerprints["a.md"] = &Fingerprint{Hash: "x"}

	if !c.InvalidateFingerprint("a.md") {
		t.Error("expected removal to report true")
	}
	if c.InvalidateFingerprint("a.md") {
		t.Error("expected second removal to report false")
	}
}
