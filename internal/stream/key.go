// Package stream implements the lazy dataflow pipeline the build runs
// every page, template, and data file through. A Stream defines a
// computation graph: transformations (Map, Filter, FlatMap, Collect,
// Combine, Parallel, Cache) describe work without executing it, and a
// terminal operation (Materialize, ForEach, Run, First, Count) drives it.
package stream

import (
	"fmt"

	"github.com/bengal-ssg/bengal/internal/bhash"
)

// Key uniquely identifies a stream item for caching and invalidation
// across builds. Two items with the same Key and Version are considered
// the same computation.
type Key struct {
	Source  string
	ID      string
	Version string
}

func (k Key) String() string {
	v := k.Version
	if len(v) > 8 {
		v = v[:8]
	}
	return fmt.Sprintf("%s:%s@%s", k.Source, k.ID, v)
}

// WithVersion returns a copy of k with Version replaced.
func (k Key) WithVersion(version string) Key {
	return Key{Source: k.Source, ID: k.ID, Version: version}
}

// contentHasher is implemented by values (such as pages) that can report
// their own stable content hash instead of being stringified and hashed.
type contentHasher interface {
	ContentHash() string
}

func versionFor(value any) string {
	if h, ok := value.(contentHasher); ok {
		return h.ContentHash()
	}
	return bhash.Content(fmt.Sprintf("%v", value))
}
