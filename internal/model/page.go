// Package model holds the site's in-memory object graph: pages, sections,
// assets, and menus that the detector, pipeline, and postprocess stages
// operate on.
package model

import "time"

// Page represents a single content file and its derived metadata.
type Page struct {
	// SourcePath is the POSIX source file path, or a virtual path under
	// .bengal/generated/ for synthesized pages (e.g. tag listings).
	SourcePath string

	// Content is the raw markdown content after frontmatter.
	Content string

	// RawFrontmatter is the original frontmatter block, used for hashing.
	RawFrontmatter string

	// Metadata holds the page's decoded frontmatter, plus cascade values
	// inherited from section index pages for keys it does not set. It is
	// not validated against a collection schema.
	Metadata map[string]any

	Slug  string
	Href  string
	Title string

	Date     *time.Time
	Modified *time.Time

	Published bool
	Draft     bool
	Private   bool
	Skip      bool

	Tags []string

	Template string

	HTML        string
	ArticleHTML string
	TOC         string

	InputHash string

	// Section is the owning section's path, or "" for root-level pages.
	Section string

	// Generated marks a page synthesized by the pipeline (no authored
	// source file) rather than discovered on disk.
	Generated bool

	// Prev and Next are adjacent-navigation neighbors within the page's
	// primary listing context.
	Prev *Page
	Next *Page

	// CascadeMetadata carries frontmatter keys a root-level page declares
	// for inheritance by non-generated descendant pages.
	CascadeMetadata map[string]any

	// TranslationKey groups pages that are alternate-language variants of
	// the same logical page, for i18n sitemap hreflang alternates.
	TranslationKey string
	Language       string
}

// IsListable reports whether a page should appear in feeds, sitemaps, and
// listing pages.
func (p *Page) IsListable() bool {
	return p.Published && !p.Draft && !p.Skip && !p.Private
}

// ContentHash returns the page's input hash as its stream-item version, so
// stream stages keyed on a page never rehash its content themselves.
func (p *Page) ContentHash() string {
	return p.InputHash
}

// NavMetadataFields are the frontmatter keys considered nav-affecting for
// the section-index cascade gate (spec §4.8 step 3).
var NavMetadataFields = []string{"title", "weight", "icon", "menu_visible", "child_order"}
