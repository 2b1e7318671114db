package postprocess

import (
	"strings"
	"testing"
	"time"

	"github.com/bengal-ssg/bengal/internal/model"
)

func TestBuildSitemapEmptySite(t *testing.T) {
	_, ok, err := BuildSitemap(nil, SitemapOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected sitemap to be skipped for zero pages")
	}
}

func TestBuildSitemapTwoPages(t *testing.T) {
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	pages := []*model.Page{
		{SourcePath: "a.md", Href: "/a/index.html", Published: true, Date: &d},
		{SourcePath: "b.md", Href: "/b/index.html", Published: true},
	}
	data, ok, err := BuildSitemap(pages, SitemapOptions{BaseURL: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected sitemap to be emitted")
	}
	if strings.Count(string(data), "<url>") != 2 {
		t.Errorf("expected 2 url entries, got:\n%s", data)
	}
	if !strings.Contains(string(data), "2024-01-15") {
		t.Errorf("expected lastmod for dated page, got:\n%s", data)
	}
}

func TestBuildFeedSkipsWhenNoDatedPages(t *testing.T) {
	pages := []*model.Page{{SourcePath: "a.md", Published: true}}
	_, ok, err := BuildFeed(pages, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected feed to be skipped when no page has a date")
	}
}

func TestSitemapLocKeepsTrailingSlash(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://example.com", "/a/index.html", "https://example.com/a/"},
		{"https://example.com/", "/a/index.html", "https://example.com/a/"},
		{"https://example.com", "/index.html", "https://example.com/"},
		{"", "/a/index.html", "/a/"},
		{"https://example.com", "/about.html", "https://example.com/about.html"},
	}
	for _, c := range cases {
		if got := sitemapLoc(c.base, c.href); got != c.want {
			t.Errorf("sitemapLoc(%q,%q) = %q, want %q", c.base, c.href, got, c.want)
		}
	}
}

func TestBuildFeedCapsAtTwentyNewest(t *testing.T) {
	var pages []*model.Page
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		d := base.AddDate(0, 0, i)
		pages = append(pages, &model.Page{
			SourcePath: "p.md", Published: true, Date: &d, Title: "post",
		})
	}
	data, ok, err := BuildFeed(pages, FeedOptions{BaseURL: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected feed to be emitted")
	}
	if count := strings.Count(string(data), "<item>"); count != MaxFeedItems {
		t.Errorf("expected %d items, got %d", MaxFeedItems, count)
	}
	if !strings.Contains(string(data), "+0000") {
		t.Errorf("expected RFC822 +0000 zone, got:\n%s", data)
	}
}

func TestBuildFeedSingleDatedItem(t *testing.T) {
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	pages := []*model.Page{
		{SourcePath: "a.md", Published: true, Date: &d, Title: "A"},
		{SourcePath: "b.md", Published: true, Title: "B"},
	}
	data, ok, err := BuildFeed(pages, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected feed to be emitted")
	}
	if strings.Count(string(data), "<item>") != 1 {
		t.Errorf("expected exactly one item, got:\n%s", data)
	}
}

func TestPlainTextStripsTags(t *testing.T) {
	got := PlainText("<p>Hello <b>world</b></p>")
	if got != "Hello world" {
		t.Errorf("got %q", got)
	}
}
