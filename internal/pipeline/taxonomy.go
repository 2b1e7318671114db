package pipeline

import (
	"regexp"
	"strings"

	"github.com/bengal-ssg/bengal/internal/bhash"
	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/collections"
	"github.com/bengal-ssg/bengal/internal/model"
)

var tagSlugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// slugifyTag lowercases tag and collapses anything outside [a-z0-9] into a
// single hyphen, trimming leading/trailing hyphens.
func slugifyTag(tag string) string {
	slug := tagSlugNonAlnum.ReplaceAllString(strings.ToLower(tag), "-")
	return strings.Trim(slug, "-")
}

// buildTaxonomyPages synthesizes one listing page per tag found across
// pages, at a deterministic generated path, versioned by a hash of the tag
// and every member page's path and content hash so a taxonomy page's cache
// key only changes when its membership or a member actually changes.
func buildTaxonomyPages(projectRoot string, pages []*model.Page) []*model.Page {
	pagesByPath := make(map[string]*model.Page, len(pages))
	for _, p := range pages {
		pagesByPath[p.SourcePath] = p
	}
	tagIndex := collections.BuildIndex(pages,
		func(p *model.Page) string { return p.SourcePath },
		func(p *model.Page) []string { return p.Tags })

	tags := tagIndex.Keys(func(a, b string) bool { return a < b })

	out := make([]*model.Page, 0, len(tags))
	for _, tag := range tags {
		memberPaths := tagIndex.Paths(tag)
		members := make([]*model.Page, 0, len(memberPaths))
		for _, path := range memberPaths {
			members = append(members, pagesByPath[path])
		}

		slug := slugifyTag(tag)
		href := "/tags/" + slug + "/"
		sourcePath := bpath.GeneratedTagPath(projectRoot, slug)

		page := &model.Page{
			SourcePath: sourcePath,
			Title:      tag,
			Slug:       "tags/" + slug,
			Href:       href,
			Section:    "tags",
			Generated:  true,
			Published:  true,
			InputHash:  taxonomyVersion(tag, members),
			Metadata:   map[string]any{"tag": tag, "pages": members},
		}
		out = append(out, page)
	}
	return out
}

// taxonomyVersion hashes a tag's name together with every member page's
// source path and input hash, so reordering or unrelated edits outside the
// tag's membership don't churn the listing page's cache key.
func taxonomyVersion(tag string, members []*model.Page) string {
	var b strings.Builder
	b.WriteString(tag)
	for _, p := range members {
		b.WriteByte('\x00')
		b.WriteString(p.SourcePath)
		b.WriteByte('\x00')
		b.WriteString(p.InputHash)
	}
	return bhash.Content(b.String())
}
