package collections

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bengal-ssg/bengal/internal/schema"
)

// Router maps discovered file paths to the collection that owns them (by
// deepest directory-prefix match) and validates each file's frontmatter
// against that collection's schema.
type Router struct {
	trie       *PathTrie
	configs    []Config
	validators map[string]*schema.Validator
}

// NewRouter builds a Router from cfgs and a parallel map of per-collection
// validators (keyed by collection name). A collection with no entry in
// validators is routed but never validated — its raw frontmatter passes
// through unchanged.
func NewRouter(cfgs []Config, validators map[string]*schema.Validator) *Router {
	return &Router{
		trie:       NewPathTrie(cfgs),
		configs:    append([]Config(nil), cfgs...),
		validators: validators,
	}
}

// Route returns the collection owning path, or ok=false if no collection's
// directory is an ancestor of path, or the file doesn't match that
// collection's glob.
func (r *Router) Route(path string) (cfg Config, ok bool) {
	cfg, ok = r.trie.Find(path)
	if !ok {
		return Config{}, false
	}
	if cfg.Glob != "" {
		rel := strings.TrimPrefix(strings.TrimPrefix(path, cfg.Directory), "/")
		matched, err := doublestar.Match(cfg.Glob, rel)
		if err != nil || !matched {
			return Config{}, false
		}
	}
	return cfg, true
}

// RoutedResult is the outcome of validating one file against its routed
// collection.
type RoutedResult struct {
	Collection string
	Result     *schema.ValidationResult
}

// ValidateFile routes path to its collection and validates frontmatter
// against that collection's schema. If no collection owns path, ok is
// false and no validation occurs. If the collection has no registered
// validator, Result is nil and frontmatter passes through unvalidated.
func (r *Router) ValidateFile(path string, frontmatter map[string]any) (result RoutedResult, ok bool) {
	cfg, matched := r.Route(path)
	if !matched {
		return RoutedResult{}, false
	}
	v, hasValidator := r.validators[cfg.Name]
	if !hasValidator {
		return RoutedResult{Collection: cfg.Name}, true
	}
	return RoutedResult{Collection: cfg.Name, Result: v.Validate(frontmatter)}, true
}

// Configs returns the collections this router was built from, in
// insertion order.
func (r *Router) Configs() []Config {
	return append([]Config(nil), r.configs...)
}

// DescribeMismatch returns a human-readable explanation of why path wasn't
// routed to name.
func DescribeMismatch(name string, cfg Config, path string) string {
	return fmt.Sprintf("%s does not own %s (directory=%s glob=%s)", name, path, cfg.Directory, cfg.Glob)
}
