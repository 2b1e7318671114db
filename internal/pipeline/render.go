package pipeline

import (
	"fmt"

	"github.com/bengal-ssg/bengal/internal/model"
	"github.com/bengal-ssg/bengal/internal/render"
)

// renderContent runs a page's markdown body through parser, filling in its
// HTML/ArticleHTML/TOC fields. ArticleHTML and HTML carry the same
// rendered body for now; ArticleHTML exists as the seam the search-index
// output (via postprocess.PlainText) reads from,
// independent of whatever template chrome HTML later ends up wrapped in.
func renderContent(parser render.Parser, page *model.Page) (*model.Page, error) {
	htmlOut, toc, err := parser.ParseWithTOC(page.Content, page.Metadata)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", page.SourcePath, err)
	}
	out := *page
	out.HTML = htmlOut
	out.ArticleHTML = htmlOut
	out.TOC = toc
	return &out, nil
}
