package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/collections"
)

// DiscoveredFile is one content file found under the content root, already
// routed to its owning collection (if any).
type DiscoveredFile struct {
	Path       string // POSIX, relative to content root
	Collection string
}

// discoverContent walks contentDir for markdown files and routes each one
// through router to its owning collection, if any.
func discoverContent(contentDir string, router *collections.Router) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	err := filepath.WalkDir(contentDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		rel = bpath.ToPosix(rel)

		collection := ""
		if router != nil {
			if cfg, ok := router.Route(rel); ok {
				collection = cfg.Name
			}
		}
		files = append(files, DiscoveredFile{Path: rel, Collection: collection})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
