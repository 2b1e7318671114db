package render

import (
	"fmt"
	"regexp"
)

// headingPattern matches an anchored heading produced by goldmark's
// auto-heading-id extension: <h2 id="slug">Text</h2>.
var headingPattern = regexp.MustCompile(`<h([1-6])\s+id="([^"]+)"[^>]*>(.*?)</h[1-6]>`)

var innerTagPattern = regexp.MustCompile(`<[^>]*>`)

// extractTOC builds a flat, indentation-by-level HTML list of contents
// from the heading anchors goldmark's auto-heading-id extension already
// embedded in the rendered HTML.
func extractTOC(htmlContent string) string {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return ""
	}
	toc := "<ul class=\"toc\">\n"
	for _, m := range matches {
		level, id, text := m[1], m[2], innerTagPattern.ReplaceAllString(m[3], "")
		toc += fmt.Sprintf("  <li class=\"toc-h%s\"><a href=\"#%s\">%s</a></li>\n", level, id, text)
	}
	toc += "</ul>"
	return toc
}
