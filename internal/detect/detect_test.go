package detect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bengal-ssg/bengal/internal/buildcache"
	"github.com/bengal-ssg/bengal/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectRebuildsOnlyChangedPage(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.md")
	bPath := filepath.Join(dir, "b.md")
	writeFile(t, aPath, "hello a")
	writeFile(t, bPath, "hello b")

	cache := buildcache.New(filepath.Join(dir, "cache.json"))
	cache.UpdateFile(aPath)
	cache.UpdateFile(bPath)

	pages := []*model.Page{
		{SourcePath: aPath},
		{SourcePath: bPath},
	}

	// First run: nothing changed since fingerprints were just recorded.
	result := Detect(Input{
		Root:      dir,
		Pages:     pages,
		Cache:     cache,
		LastBuild: time.Now().Add(time.Hour),
		OutputDir: "",
	})
	if len(result.PagesToBuild) != 0 {
		t.Fatalf("expected no rebuilds, got %v", result.PagesToBuild)
	}

	// Edit a.md only.
	writeFile(t, aPath, "hello a, edited")
	result = Detect(Input{
		Root:      dir,
		Pages:     pages,
		Cache:     cache,
		LastBuild: time.Now().Add(time.Hour),
	})
	if len(result.PagesToBuild) != 1 || result.PagesToBuild[0] != aPath {
		t.Fatalf("expected only a.md rebuilt, got %v", result.PagesToBuild)
	}
}

func TestDetectOutputMissingForcesFullRebuild(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.md")
	writeFile(t, aPath, "hello")

	cache := buildcache.New(filepath.Join(dir, "cache.json"))
	cache.UpdateFile(aPath)

	outputDir := filepath.Join(dir, "public")
	// Output directory does not exist: sentinel index.html is missing.
	result := Detect(Input{
		Root:      dir,
		Pages:     []*model.Page{{SourcePath: aPath}},
		Cache:     cache,
		LastBuild: time.Now().Add(time.Hour),
		OutputDir: outputDir,
	})
	if len(result.PagesToBuild) != 1 {
		t.Fatalf("expected output-missing to force rebuild of all pages, got %v", result.PagesToBuild)
	}
}

func TestDetectSectionNavGate(t *testing.T) {
	dir := t.TempDir()
	idxPath := filepath.Join(dir, "docs", "_index.md")
	childPath := filepath.Join(dir, "docs", "child.md")
	writeFile(t, idxPath, "---\ntitle: Docs\n---\n")
	writeFile(t, childPath, "child content")

	cache := buildcache.New(filepath.Join(dir, "cache.json"))
	cache.UpdateFile(idxPath)
	cache.UpdateFile(childPath)

	idx := &model.Page{SourcePath: idxPath, Section: "docs", Metadata: map[string]any{"title": "Docs", "weight": 1}}
	child := &model.Page{SourcePath: childPath, Section: "docs"}
	section := &model.Section{Path: "docs", IndexPage: idx, Pages: []*model.Page{child}}

	// Prime the nav-metadata hash as if a prior build already saw this title/weight.
	cache.SetNavMetadataHash(idxPath, navMetadataHash(idx.Metadata))

	// Body-only edit: title/weight unchanged, only body/content changes.
	writeFile(t, idxPath, "---\ntitle: Docs\nweight: 1\n---\nnew body")

	result := Detect(Input{
		Root:          dir,
		Pages:         []*model.Page{idx, child},
		Sections:      []*model.Section{section},
		Cache:         cache,
		LastBuild:     time.Now().Add(time.Hour),
		ForcedChanged: map[string]bool{idxPath: true},
	})

	for _, p := range result.PagesToBuild {
		if p == childPath {
			t.Fatalf("expected body-only section-index edit to skip descendant rebuild, got %v", result.PagesToBuild)
		}
	}
}
