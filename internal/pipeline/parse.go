package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bengal-ssg/bengal/internal/bhash"
	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/model"
	"github.com/bengal-ssg/bengal/internal/schema"
)

// parseContentFile reads and parses one content file into a *model.Page
// with its raw markdown body retained unrendered; the page stream stage
// fills in HTML/ArticleHTML/TOC via a render.Parser.
func parseContentFile(contentDir string, file DiscoveredFile) (*model.Page, error) {
	fullPath := filepath.Join(contentDir, filepath.FromSlash(file.Path))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file.Path, err)
	}

	metadata, body, raw, err := parseFrontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing frontmatter for %s: %w", file.Path, err)
	}

	page := &model.Page{
		SourcePath:     bpath.ToPosix(fullPath),
		Content:        body,
		RawFrontmatter: raw,
		Metadata:       metadata,
	}
	applyMetadata(page, metadata)

	page.Section = sectionOf(file.Path)
	if page.Slug == "" {
		page.Slug = slugFromPath(file.Path)
	}
	page.Href = hrefFromSlug(page.Slug)

	page.InputHash = bhash.Content(raw + "\x00" + body + "\x00" + page.Template)
	return page, nil
}

func applyMetadata(page *model.Page, metadata map[string]any) {
	if title, ok := metadata["title"].(string); ok {
		page.Title = title
	}
	if d, ok := metadata["date"]; ok {
		if t, ok := parseMetaDate(d); ok {
			page.Date = &t
		}
	}
	if d, ok := metadata["modified"]; ok {
		if t, ok := parseMetaDate(d); ok {
			page.Modified = &t
		}
	}
	page.Published = metaBool(metadata, "published", false)
	page.Draft = metaBool(metadata, "draft", false)
	page.Private = metaBool(metadata, "private", false)
	page.Skip = metaBool(metadata, "skip", false)

	page.Tags = metaStringSlice(metadata, "tags")
	sort.Strings(page.Tags)

	if tmpl, ok := metadata["template"].(string); ok {
		page.Template = tmpl
	}
	if slug, ok := metadata["slug"].(string); ok {
		page.Slug = normalizeSlug(slug)
	}
	if cascade, ok := metadata["cascade"].(map[string]any); ok {
		page.CascadeMetadata = cascade
	}
	if key, ok := metadata["translation_key"].(string); ok {
		page.TranslationKey = key
	}
	if lang, ok := metadata["language"].(string); ok {
		page.Language = lang
	}
}

func metaBool(metadata map[string]any, key string, def bool) bool {
	v, ok := metadata[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "yes", "on":
			return true
		case "false", "no", "off":
			return false
		}
	}
	return def
}

func metaStringSlice(metadata map[string]any, key string) []string {
	v, ok := metadata[key]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func parseMetaDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
		return schema.ParseFlexibleTime(val)
	}
	return time.Time{}, false
}

func normalizeSlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "/" {
		return ""
	}
	return strings.Trim(slug, "/")
}

// sectionOf returns the POSIX directory path a content file belongs to,
// relative to the content root, or "" for a root-level file.
func sectionOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return bpath.ToPosix(dir)
}

func slugFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := sectionOf(path)
	if base == "_index" || base == "index" {
		return dir
	}
	if dir == "" {
		return base
	}
	return dir + "/" + base
}

func hrefFromSlug(slug string) string {
	if slug == "" {
		return "/"
	}
	return "/" + slug + "/"
}
