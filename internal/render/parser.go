// Package render defines the Parser and TemplateEngine interfaces the
// build pipeline's parse and render stages are written against (spec
// §4.10: "the core owns orchestration, not the actual markdown/template
// work"), plus concrete adapters backed by goldmark and pongo2 — the
// teacher's own markdown and template stack.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/anchor"
)

// ParserVersion is recorded in the build cache's parsed-content entry so a
// change in this module's markdown configuration invalidates every
// previously parsed page ("Parser version is captured in the
// cache's parsed-content entry").
const ParserVersion = 1

// Parser converts a page's raw content and frontmatter-derived metadata
// into rendered HTML. ParseWithTOC additionally returns a table of
// contents; ParseWithContext threads caller-supplied link-resolution
// context (e.g. for wikilinks) through the render.
type Parser interface {
	Parse(content string, metadata map[string]any) (string, error)
	ParseWithTOC(content string, metadata map[string]any) (html string, toc string, err error)
	ParseWithContext(content string, metadata map[string]any, ctx map[string]any) (string, error)
}

// GoldmarkParser is the default Parser, configured with the same
// extension set: GFM tables/strikethrough/autolinks, emoji shortcodes,
// chroma-backed syntax highlighting, and heading anchors.
type GoldmarkParser struct {
	md goldmark.Markdown
}

// NewGoldmarkParser builds a GoldmarkParser with the standard extension
// set.
func NewGoldmarkParser() *GoldmarkParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			emoji.Emoji,
			highlighting.NewHighlighting(highlighting.WithStyle("monokai")),
			&anchor.Extender{},
		),
		goldmark.WithParserOptions(
			gmparser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &GoldmarkParser{md: md}
}

// Parse renders content to HTML, ignoring metadata (goldmark's own
// extensions don't currently need it; the parameter exists so Parser
// implementations that do — e.g. shortcode resolution keyed by page
// frontmatter — can use it without changing the interface).
func (p *GoldmarkParser) Parse(content string, metadata map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseWithTOC renders content to HTML and additionally extracts a table
// of contents from the generated heading anchors.
func (p *GoldmarkParser) ParseWithTOC(content string, metadata map[string]any) (string, string, error) {
	htmlOut, err := p.Parse(content, metadata)
	if err != nil {
		return "", "", err
	}
	return htmlOut, extractTOC(htmlOut), nil
}

// ParseWithContext renders content to HTML; ctx is reserved for
// link-resolution state a richer Parser implementation would thread
// through (e.g. a site-wide page index for wikilink resolution).
func (p *GoldmarkParser) ParseWithContext(content string, metadata map[string]any, ctx map[string]any) (string, error) {
	return p.Parse(content, metadata)
}
