package model

import "testing"

func buildTestTree() *Section {
	root := &Section{Path: ""}
	blog := &Section{Path: "blog", Parent: root}
	blog.Pages = []*Page{{SourcePath: "blog/a.md"}, {SourcePath: "blog/b.md"}}
	sub := &Section{Path: "blog/2024", Parent: blog}
	sub.Pages = []*Page{{SourcePath: "blog/2024/c.md"}}
	blog.Subsections = []*Section{sub}
	root.Subsections = []*Section{blog}
	return root
}

func TestRegularPagesRecursive(t *testing.T) {
	root := buildTestTree()
	pages := root.RegularPagesRecursive()
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
}

func TestAllSubsections(t *testing.T) {
	root := buildTestTree()
	all := root.AllSubsections()
	if len(all) != 3 {
		t.Fatalf("expected 3 sections (root, blog, blog/2024), got %d", len(all))
	}
}

func TestAncestors(t *testing.T) {
	root := buildTestTree()
	sub := root.Subsections[0].Subsections[0]
	ancestors := sub.Ancestors()
	if len(ancestors) != 2 {
		t.Fatalf("expected 2 ancestors, got %d", len(ancestors))
	}
	if ancestors[0].Path != "blog" || ancestors[1].Path != "" {
		t.Errorf("unexpected ancestor order: %v", ancestors)
	}
}

func TestIsListable(t *testing.T) {
	p := &Page{Published: true}
	if !p.IsListable() {
		t.Error("expected published page to be listable")
	}
	p.Draft = true
	if p.IsListable() {
		t.Error("expected draft page to not be listable")
	}
}
