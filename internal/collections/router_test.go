package collections

import (
	"testing"

	"github.com/bengal-ssg/bengal/internal/schema"
)

func TestRouterGlobFilter(t *testing.T) {
	r := NewRouter([]Config{
		{Name: "blog", Directory: "blog", Glob: "**/*.md"},
		{Name: "notes", Directory: "notes", Glob: "*.md"},
	}, nil)

	cases := []struct {
		path string
		want string
		ok   bool
	}{
		{"blog/post.md", "blog", true},
		{"blog/2024/post.md", "blog", true},
		{"blog/draft.txt", "", false},
		{"notes/todo.md", "notes", true},
		{"notes/deep/todo.md", "", false}, // single-star glob doesn't cross directories
		{"pages/about.md", "", false},
	}
	for _, c := range cases {
		cfg, ok := r.Route(c.path)
		if ok != c.ok || (ok && cfg.Name != c.want) {
			t.Errorf("Route(%q) = (%q,%v), want (%q,%v)", c.path, cfg.Name, ok, c.want, c.ok)
		}
	}
}

type postSchema struct {
	Title string `schema:"title,required"`
	Draft bool   `schema:"draft"`
}

func TestRouterValidateFile(t *testing.T) {
	validators := map[string]*schema.Validator{
		"blog": schema.New(&postSchema{}),
	}
	r := NewRouter([]Config{{Name: "blog", Directory: "blog", Glob: "**/*.md"}}, validators)

	res, ok := r.ValidateFile("blog/post.md", map[string]any{"title": "Hello", "draft": "yes"})
	if !ok {
		t.Fatal("expected blog/post.md to route")
	}
	if res.Collection != "blog" {
		t.Errorf("collection = %q, want blog", res.Collection)
	}
	if res.Result == nil || !res.Result.Valid {
		t.Fatalf("expected valid result, got %+v", res.Result)
	}

	res, ok = r.ValidateFile("blog/bad.md", map[string]any{"draft": true})
	if !ok {
		t.Fatal("expected blog/bad.md to route")
	}
	if res.Result.Valid {
		t.Error("expected missing required title to fail validation")
	}
}

func TestRouterValidateFileNoValidator(t *testing.T) {
	r := NewRouter([]Config{{Name: "pages", Directory: "pages"}}, nil)
	res, ok := r.ValidateFile("pages/about.md", map[string]any{"anything": 1})
	if !ok || res.Result != nil {
		t.Errorf("expected routed-but-unvalidated result, got ok=%v result=%v", ok, res.Result)
	}
}

func TestRouterUnroutedFile(t *testing.T) {
	r := NewRouter([]Config{{Name: "blog", Directory: "blog"}}, nil)
	if _, ok := r.ValidateFile("elsewhere/x.md", nil); ok {
		t.Error("expected unrouted file to return ok=false")
	}
}

func TestIndex(t *testing.T) {
	idx := NewIndex[string]()
	idx.Add("go", "blog/a.md")
	idx.Add("go", "blog/b.md")
	idx.Add("rust", "blog/b.md")

	paths := idx.Paths("go")
	if len(paths) != 2 || paths[0] != "blog/a.md" || paths[1] != "blog/b.md" {
		t.Errorf("Paths(go) = %v", paths)
	}
	keys := idx.Keys(func(a, b string) bool { return a < b })
	if len(keys) != 2 || keys[0] != "go" || keys[1] != "rust" {
		t.Errorf("Keys = %v", keys)
	}
	if paths := idx.Paths("absent"); len(paths) != 0 {
		t.Errorf("Paths(absent) = %v", paths)
	}
}

func TestBuildIndex(t *testing.T) {
	type tagged struct {
		path string
		tags []string
	}
	items := []tagged{
		{"blog/a.md", []string{"go", "web"}},
		{"blog/b.md", []string{"go"}},
		{"blog/c.md", nil},
	}
	idx := BuildIndex(items,
		func(item tagged) string { return item.path },
		func(item tagged) []string { return item.tags })

	if paths := idx.Paths("go"); len(paths) != 2 {
		t.Errorf("Paths(go) = %v", paths)
	}
	if paths := idx.Paths("web"); len(paths) != 1 || paths[0] != "blog/a.md" {
		t.Errorf("Paths(web) = %v", paths)
	}
	keys := idx.Keys(func(a, b string) bool { return a < b })
	if len(keys) != 2 {
		t.Errorf("Keys = %v", keys)
	}
}
