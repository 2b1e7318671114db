package postprocess

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/bengal-ssg/bengal/internal/model"
)

// tagStripper is a crude HTML-tag remover used only to derive plain text
// for the search index from already-rendered HTML;
// it is not a sanitizer and must never be used on untrusted HTML destined
// for a browser.
var tagStripper = regexp.MustCompile(`<[^>]*>`)

// PlainText strips HTML tags from a rendered page and collapses whitespace.
// BuildSearchIndex uses it for each entry's body; no standalone plain-text
// output file is written.
func PlainText(articleHTML string) string {
	text := tagStripper.ReplaceAllString(articleHTML, " ")
	return strings.Join(strings.Fields(text), " ")
}

// SearchIndexEntry is one record in the generated search JSON output.
type SearchIndexEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// BuildSearchIndex renders the search JSON output format from every
// listable page.
func BuildSearchIndex(pages []*model.Page) ([]byte, error) {
	entries := make([]SearchIndexEntry, 0, len(pages))
	for _, p := range pages {
		if !p.IsListable() {
			continue
		}
		entries = append(entries, SearchIndexEntry{
			Title: p.Title,
			URL:   p.Href,
			Body:  PlainText(p.ArticleHTML),
		})
	}
	return json.Marshal(entries)
}
