package pipeline

import (
	"testing"
	"time"

	"github.com/bengal-ssg/bengal/internal/model"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAssembleSectionsTree(t *testing.T) {
	pages := []*model.Page{
		{SourcePath: "index.md", Section: ""},
		{SourcePath: "blog/_index.md", Section: "blog"},
		{SourcePath: "blog/a.md", Section: "blog", Date: datePtr(2024, 1, 2)},
		{SourcePath: "blog/b.md", Section: "blog", Date: datePtr(2024, 1, 1)},
		{SourcePath: "docs/guide/setup.md", Section: "docs/guide"},
	}

	root, bySection := assembleSections(pages)
	if root.IndexPage == nil || root.IndexPage.SourcePath != "index.md" {
		t.Errorf("root index = %v", root.IndexPage)
	}

	blog := bySection["blog"]
	if blog == nil || blog.IndexPage == nil {
		t.Fatal("expected blog section with index page")
	}
	if len(blog.Pages) != 2 {
		t.Fatalf("blog pages = %d", len(blog.Pages))
	}
	// Listing order is newest first.
	if blog.Pages[0].SourcePath != "blog/a.md" {
		t.Errorf("first listed = %s", blog.Pages[0].SourcePath)
	}

	// docs has no content files of its own but must exist as an
	// intermediate node with docs/guide below it.
	docs := bySection["docs"]
	if docs == nil {
		t.Fatal("expected intermediate docs section")
	}
	if len(docs.Subsections) != 1 || docs.Subsections[0].Path != "docs/guide" {
		t.Errorf("docs subsections = %v", docs.Subsections)
	}
	if docs.Parent != root {
		t.Error("docs parent should be root")
	}
}

func TestAssembleSectionsPrevNext(t *testing.T) {
	pages := []*model.Page{
		{SourcePath: "blog/a.md", Section: "blog", Date: datePtr(2024, 3, 1)},
		{SourcePath: "blog/b.md", Section: "blog", Date: datePtr(2024, 2, 1)},
		{SourcePath: "blog/c.md", Section: "blog", Date: datePtr(2024, 1, 1)},
	}
	_, bySection := assembleSections(pages)
	listed := bySection["blog"].Pages

	if listed[0].Prev != nil || listed[0].Next != listed[1] {
		t.Error("first page neighbors wrong")
	}
	if listed[1].Prev != listed[0] || listed[1].Next != listed[2] {
		t.Error("middle page neighbors wrong")
	}
	if listed[2].Prev != listed[1] || listed[2].Next != nil {
		t.Error("last page neighbors wrong")
	}
}

func TestCascadeMetadataInheritance(t *testing.T) {
	pages := []*model.Page{
		{
			SourcePath:      "docs/_index.md",
			Section:         "docs",
			CascadeMetadata: map[string]any{"layout": "doc", "version": "v2"},
		},
		{SourcePath: "docs/setup.md", Section: "docs", Metadata: map[string]any{}},
		{
			SourcePath: "docs/special.md",
			Section:    "docs",
			Metadata:   map[string]any{"layout": "custom"},
		},
		{SourcePath: "docs/deep/ref.md", Section: "docs/deep", Metadata: map[string]any{}},
	}
	assembleSections(pages)

	if pages[1].Metadata["layout"] != "doc" {
		t.Errorf("setup layout = %v", pages[1].Metadata["layout"])
	}
	if pages[2].Metadata["layout"] != "custom" {
		t.Errorf("explicit frontmatter must win, got %v", pages[2].Metadata["layout"])
	}
	if pages[3].Metadata["version"] != "v2" {
		t.Errorf("cascade must reach subsection pages, got %v", pages[3].Metadata["version"])
	}
}

func TestBuildTaxonomyPages(t *testing.T) {
	pages := []*model.Page{
		{SourcePath: "blog/a.md", Tags: []string{"Go", "web"}, InputHash: "h1"},
		{SourcePath: "blog/b.md", Tags: []string{"Go"}, InputHash: "h2"},
	}
	tax := buildTaxonomyPages("/proj", pages)
	if len(tax) != 2 {
		t.Fatalf("got %d taxonomy pages", len(tax))
	}

	var goPage *model.Page
	for _, p := range tax {
		if p.Title == "Go" {
			goPage = p
		}
	}
	if goPage == nil {
		t.Fatal("expected a Go tag page")
	}
	if goPage.SourcePath != "/proj/.bengal/generated/tags/go/index.md" {
		t.Errorf("virtual path = %s", goPage.SourcePath)
	}
	if goPage.Href != "/tags/go/" || !goPage.Generated {
		t.Errorf("href = %s generated = %v", goPage.Href, goPage.Generated)
	}

	// The version only changes when membership or a member changes.
	again := buildTaxonomyPages("/proj", pages)
	for i := range tax {
		if tax[i].InputHash != again[i].InputHash {
			t.Error("taxonomy version must be deterministic")
		}
	}
	pages[1].InputHash = "h2-changed"
	changed := buildTaxonomyPages("/proj", pages)
	var changedGo *model.Page
	for _, p := range changed {
		if p.Title == "Go" {
			changedGo = p
		}
	}
	if changedGo.InputHash == goPage.InputHash {
		t.Error("member change must change the tag page version")
	}
}

func TestSlugifyTag(t *testing.T) {
	cases := map[string]string{
		"Go":            "go",
		"Web Dev":       "web-dev",
		"C++ tricks!":   "c-tricks",
		"--wrapped--":   "wrapped",
		"many   spaces": "many-spaces",
	}
	for in, want := range cases {
		if got := slugifyTag(in); got != want {
			t.Errorf("slugifyTag(%q) = %q, want %q", in, got, want)
		}
	}
}
