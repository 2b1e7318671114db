package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bengal-ssg/bengal/internal/collections"
	"github.com/bengal-ssg/bengal/internal/config"
	"github.com/bengal-ssg/bengal/internal/schema"
)

// ContentIssue is one problem found while validating a content file:
// either its frontmatter failed to parse, or a field failed its
// collection's schema.
type ContentIssue struct {
	Path       string // POSIX, relative to content root
	Collection string // owning collection, or "" if unrouted
	Field      string // failing field, or "" for file-level problems
	Message    string
}

func (i ContentIssue) String() string {
	loc := i.Path
	if i.Collection != "" {
		loc = fmt.Sprintf("%s (%s)", i.Path, i.Collection)
	}
	if i.Field != "" {
		return fmt.Sprintf("%s: %s: %s", loc, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s", loc, i.Message)
}

// ValidateContent walks the configured content directory, parses each
// file's frontmatter, and validates it against its collection's schema.
// validators maps collection name to validator and may be nil; files owned
// by a collection with no validator only get their frontmatter syntax
// checked. Lenient (non-strict) collections report their schema errors
// too — the caller decides whether lenient errors are fatal.
func ValidateContent(cfg *config.Config, validators map[string]*schema.Validator) ([]ContentIssue, error) {
	router := buildRouterWithValidators(cfg, validators)
	files, err := discoverContent(cfg.ContentDir, router)
	if err != nil {
		return nil, fmt.Errorf("discovering content: %w", err)
	}

	var issues []ContentIssue
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(cfg.ContentDir, filepath.FromSlash(f.Path)))
		if err != nil {
			issues = append(issues, ContentIssue{Path: f.Path, Collection: f.Collection, Message: err.Error()})
			continue
		}
		metadata, _, _, err := parseFrontmatter(string(data))
		if err != nil {
			issues = append(issues, ContentIssue{Path: f.Path, Collection: f.Collection, Message: fmt.Sprintf("invalid frontmatter: %v", err)})
			continue
		}

		routed, ok := router.ValidateFile(f.Path, metadata)
		if !ok || routed.Result == nil || routed.Result.Valid {
			continue
		}
		for _, e := range routed.Result.Errors {
			issues = append(issues, ContentIssue{
				Path:       f.Path,
				Collection: routed.Collection,
				Field:      e.Field,
				Message:    e.Message,
			})
		}
	}
	return issues, nil
}

// SourceEntry records which collection owns one discovered content file.
type SourceEntry struct {
	Path       string
	Collection string // "" if no collection's directory is an ancestor
}

// ListSources returns every discovered content file with the collection
// that owns it, for the explain --sources listing.
func ListSources(cfg *config.Config) ([]SourceEntry, error) {
	files, err := discoverContent(cfg.ContentDir, buildRouter(cfg))
	if err != nil {
		return nil, fmt.Errorf("discovering content: %w", err)
	}
	entries := make([]SourceEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, SourceEntry{Path: f.Path, Collection: f.Collection})
	}
	return entries, nil
}

func buildRouterWithValidators(cfg *config.Config, validators map[string]*schema.Validator) *collections.Router {
	if len(cfg.Collections) == 0 {
		return collections.NewRouter(nil, validators)
	}
	configs := make([]collections.Config, 0, len(cfg.Collections))
	for name, c := range cfg.Collections {
		configs = append(configs, collections.Config{
			Name:       name,
			Directory:  c.Directory,
			Glob:       c.Glob,
			Strict:     c.Strict,
			AllowExtra: c.AllowExtra,
		})
	}
	return collections.NewRouter(configs, validators)
}
