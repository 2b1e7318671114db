package bpath

import "testing"

func TestIsAncestorComponent(t *testing.T) {
	cases := []struct {
		dir, path string
		want      bool
	}{
		{"content/blog", "content/blog/post.md", true},
		{"content/blog", "content/blogposts/post.md", false},
		{"content/blog", "content/blog", true},
		{"", "anything", true},
		{"content/blog", "content/other/post.md", false},
	}
	for _, c := range cases {
		if got := IsAncestorComponent(c.dir, c.path); got != c.want {
			t.Errorf("IsAncestorComponent(%q,%q) = %v, want %v", c.dir, c.path, got, c.want)
		}
	}
}

func TestOutputPathForURL(t *testing.T) {
	cases := map[string]string{
		"":              "index.html",
		"/":             "index.html",
		"/blog/post":    "blog/post/index.html",
		"blog/post":     "blog/post/index.html",
		"/a/index.html": "a/index.html",
	}
	for in, want := range cases {
		if got := OutputPathForURL(in); got != want {
			t.Errorf("OutputPathForURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGeneratedTagPath(t *testing.T) {
	got := GeneratedTagPath("/root", "go")
	want := "/root/.bengal/generated/tags/go/index.md"
	if got != want {
		t.Errorf("GeneratedTagPath = %q, want %q", got, want)
	}
}
