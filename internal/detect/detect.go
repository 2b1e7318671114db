// Package detect implements the incremental-build change detector: given
// the site model, the build cache, and any externally signaled forced
// changes, it decides the minimal set of pages and assets that must be
// rebuilt this run and applies every invalidation cascade in a fixed step
// order.
package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bengal-ssg/bengal/internal/bhash"
	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/buildcache"
	"github.com/bengal-ssg/bengal/internal/cachecoord"
	"github.com/bengal-ssg/bengal/internal/deptrack"
	"github.com/bengal-ssg/bengal/internal/model"
)

// ChangeSummary groups detected changes by category for the build log and
// the CLI's --verbose output.
type ChangeSummary struct {
	ModifiedContent   []string
	ModifiedTemplates []string
	ModifiedAssets    []string

	// ExtraChanges is the open-ended map of cascade category -> affected
	// paths: "section_nav", "root_cascade", "shared_content",
	// "adjacent_nav", "data_file", "taxonomy", "autodoc".
	ExtraChanges map[string][]string
}

func (s *ChangeSummary) addExtra(category, path string) {
	if s.ExtraChanges == nil {
		s.ExtraChanges = make(map[string][]string)
	}
	s.ExtraChanges[category] = append(s.ExtraChanges[category], path)
}

// Result is the detector's verdict for one run.
type Result struct {
	PagesToBuild    []string
	AssetsToProcess []string
	Summary         ChangeSummary
}

// Input bundles the site model, cache collaborators, and config-derived
// settings the detector needs for one run.
type Input struct {
	Root string

	Sections []*model.Section // all sections, root included, flattened
	Pages    []*model.Page    // every known page, including generated ones
	Assets   []*model.Asset

	Cache       *buildcache.Cache
	Tracker     *deptrack.Tracker
	Coordinator *cachecoord.Coordinator

	// ForcedChanged and NavChanged are externally signaled changed-path
	// sets, typically from a dev-server watcher batch; both may be nil.
	ForcedChanged map[string]bool
	NavChanged    map[string]bool

	LastBuild time.Time

	SharedDirs    []string // content-root-relative directories
	TemplateRoots []string // theme templates dir + site templates dir
	DataFileExts  []string // e.g. .yaml .yml .json .toml

	OutputDir string

	// TaxonomyTermPage resolves a tag to its source page path, synthesizing
	// a deterministic virtual path under .bengal/generated/tags/<slug>/
	// when the term page hasn't been materialized as a real model.Page.
	TaxonomyTermPage func(tag string) string

	// AutodocSourceRoot, when non-empty, is walked to find tracked autodoc
	// source files; AutodocHash computes a content-based hash for one.
	AutodocSourceRoot string
	AutodocHash       func(source string) (string, error)
	AutodocPages      []string // all pages generated from autodoc sources

	// NoDataFileTracking signals the tracker has never recorded data-file
	// dependents (first run): the cascade conservatively rebuilds every
	// non-generated page rather than rebuilding nothing.
	NoDataFileTracking bool
}

func mtimeOf(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Detect runs the full §4.8 algorithm and returns the rebuild set.
func Detect(in Input) Result {
	rebuild := make(map[string]bool)
	var summary ChangeSummary

	pagesByPath := make(map[string]*model.Page, len(in.Pages))
	for _, p := range in.Pages {
		pagesByPath[p.SourcePath] = p
	}

	forced := in.ForcedChanged
	if forced == nil {
		forced = map[string]bool{}
	}
	nav := in.NavChanged
	if nav == nil {
		nav = map[string]bool{}
	}
	explicit := make(map[string]bool, len(forced)+len(nav))
	for k := range forced {
		explicit[k] = true
	}
	for k := range nav {
		explicit[k] = true
	}

	// Step 1: section filter. A section's member pages are candidates only
	// if the section's max mtime exceeds the last build time, or the
	// section contains an explicitly changed path.
	candidates := candidatePages(in.Sections, in.Pages, in.LastBuild, explicit)

	// Step 2: per-page primary change.
	for _, p := range candidates {
		if p.Generated {
			continue
		}
		if in.Cache.ShouldBypass(p.SourcePath, explicit) {
			rebuild[p.SourcePath] = true
			in.Cache.UpdateTags(p.SourcePath, p.Tags)
			summary.ModifiedContent = append(summary.ModifiedContent, p.SourcePath)
		}
	}

	// Step 3: section-index frontmatter cascade.
	for _, sec := range in.Sections {
		idx := sec.IndexPage
		if idx == nil || !rebuild[idx.SourcePath] {
			continue
		}
		navHash := navMetadataHash(idx.Metadata)
		prevHash := in.Cache.GetNavMetadataHash(idx.SourcePath)
		in.Cache.SetNavMetadataHash(idx.SourcePath, navHash)
		if prevHash != "" && prevHash == navHash {
			continue
		}
		for _, desc := range sec.RegularPagesRecursive() {
			if desc.Generated {
				continue
			}
			if !rebuild[desc.SourcePath] {
				rebuild[desc.SourcePath] = true
				summary.addExtra("section_nav", desc.SourcePath)
			}
		}
	}

	// Step 4: root-level cascade metadata.
	for _, p := range in.Pages {
		if p.Section != "" || len(p.CascadeMetadata) == 0 {
			continue
		}
		if !rebuild[p.SourcePath] {
			continue
		}
		for _, other := range in.Pages {
			if other.Generated || other.SourcePath == p.SourcePath {
				continue
			}
			if !rebuild[other.SourcePath] {
				rebuild[other.SourcePath] = true
				summary.addExtra("root_cascade", other.SourcePath)
			}
		}
	}

	// Step 5: shared-content cascade. Any changed file under a configured
	// shared directory forces a rebuild of every versioned (non-generated)
	// page.
	sharedChanged := false
	for path := range explicit {
		if isUnderAny(path, in.SharedDirs) {
			sharedChanged = true
			break
		}
	}
	if !sharedChanged {
		for path := range rebuild {
			if isUnderAny(path, in.SharedDirs) {
				sharedChanged = true
				break
			}
		}
	}
	if sharedChanged {
		for _, p := range in.Pages {
			if p.Generated {
				continue
			}
			if !rebuild[p.SourcePath] {
				rebuild[p.SourcePath] = true
				summary.addExtra("shared_content", p.SourcePath)
			}
		}
	}

	// Step 6: adjacent navigation. For every page already marked for
	// rebuild, pull in its prev/next neighbors too.
	for path := range snapshot(rebuild) {
		p := pagesByPath[path]
		if p == nil {
			continue
		}
		for _, neighbor := range []*model.Page{p.Prev, p.Next} {
			if neighbor == nil || neighbor.Generated {
				continue
			}
			if !rebuild[neighbor.SourcePath] {
				rebuild[neighbor.SourcePath] = true
				summary.addExtra("adjacent_nav", neighbor.SourcePath)
			}
		}
	}

	// Step 7: template changes. Unchanged templates are re-fingerprinted
	// via the deferred-update path by the renderer itself, not here; the
	// detector only expands the rebuild set for templates the caller has
	// already determined changed (present in explicit and under a
	// template root).
	for path := range explicit {
		if !isUnderAny(path, in.TemplateRoots) {
			continue
		}
		affected := in.Cache.GetAffectedPages(path)
		summary.ModifiedTemplates = append(summary.ModifiedTemplates, path)
		for _, page := range affected {
			if !rebuild[page] {
				rebuild[page] = true
			}
		}
	}

	// Step 8: data-file cascade.
	for path := range explicit {
		if !isDataFile(path, in.DataFileExts) {
			continue
		}
		var affected []string
		if in.NoDataFileTracking {
			for _, p := range in.Pages {
				if !p.Generated {
					affected = append(affected, p.SourcePath)
				}
			}
		} else {
			affected = in.Tracker.Dependents(path)
		}
		for _, page := range affected {
			if !rebuild[page] {
				rebuild[page] = true
			}
			summary.addExtra("data_file", page)
			if in.Coordinator != nil {
				in.Coordinator.InvalidatePage(page, cachecoord.ReasonDataFileChanged, path)
			}
		}
	}

	// Step 9: taxonomy metadata cascade. Every rebuilt page with tags may
	// have changed listing-relevant metadata; conservatively pull in the
	// term pages for each of its tags.
	if in.TaxonomyTermPage != nil {
		for path := range snapshot(rebuild) {
			p := pagesByPath[path]
			if p == nil || len(p.Tags) == 0 {
				continue
			}
			for _, tag := range p.Tags {
				termPath := in.TaxonomyTermPage(tag)
				if termPath == "" || rebuild[termPath] {
					continue
				}
				rebuild[termPath] = true
				summary.addExtra("taxonomy", termPath)
			}
		}
	}

	// Step 10: autodoc. Union of mtime-based and hash-based detection.
	if in.AutodocSourceRoot != "" {
		sources := in.Cache.GetAutodocSourceFiles()
		if len(sources) == 0 {
			for _, page := range in.AutodocPages {
				if !rebuild[page] {
					rebuild[page] = true
					summary.addExtra("autodoc", page)
				}
			}
		} else {
			changedByMtime := make(map[string]bool)
			for _, src := range sources {
				if in.Cache.IsChanged(src) {
					changedByMtime[src] = true
				}
			}
			var changedByHash []string
			if in.AutodocHash != nil {
				changedByHash, _ = in.Cache.GetStaleAutodocSources(in.AutodocHash)
			}
			stale := make(map[string]bool, len(changedByMtime)+len(changedByHash))
			for s := range changedByMtime {
				stale[s] = true
			}
			for _, s := range changedByHash {
				stale[s] = true
			}
			for src := range stale {
				for _, page := range in.Cache.GetAffectedAutodocPages(src) {
					if !rebuild[page] {
						rebuild[page] = true
						summary.addExtra("autodoc", page)
					}
				}
			}
		}
	}

	// Step 11: assets.
	var assets []string
	for _, a := range in.Assets {
		if in.Cache.ShouldBypass(a.SourcePath, explicit) {
			assets = append(assets, a.SourcePath)
			summary.ModifiedAssets = append(summary.ModifiedAssets, a.SourcePath)
		}
	}

	// Output-missing safety net: if the sentinel output is gone, escalate
	// to a full rebuild regardless of what the cache believed was current.
	if outputMissing(in.OutputDir) {
		for _, p := range in.Pages {
			if !rebuild[p.SourcePath] {
				rebuild[p.SourcePath] = true
			}
		}
		for _, a := range in.Assets {
			assets = append(assets, a.SourcePath)
		}
	}

	pages := make([]string, 0, len(rebuild))
	for p := range rebuild {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	sort.Strings(assets)

	sortSummary(&summary)
	return Result{PagesToBuild: pages, AssetsToProcess: assets, Summary: summary}
}

func snapshot(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func candidatePages(sections []*model.Section, allPages []*model.Page, lastBuild time.Time, explicit map[string]bool) []*model.Page {
	if lastBuild.IsZero() {
		return allPages
	}

	bySection := make(map[string]bool)
	for _, sec := range sections {
		maxMtime := time.Time{}
		touched := false
		members := sec.Pages
		if sec.IndexPage != nil {
			members = append(append([]*model.Page(nil), members...), sec.IndexPage)
		}
		for _, p := range members {
			if explicit[p.SourcePath] {
				touched = true
			}
			if p.Generated {
				continue
			}
			if mt := mtimeOf(p.SourcePath); mt.After(maxMtime) {
				maxMtime = mt
			}
		}
		if touched || maxMtime.After(lastBuild) {
			bySection[sec.Path] = true
		}
	}

	var out []*model.Page
	for _, p := range allPages {
		if p.Section == "" || bySection[p.Section] {
			out = append(out, p)
		}
	}
	return out
}

// navMetadataHash hashes only the nav-affecting metadata subset (spec
// §4.8 step 3 / model.NavMetadataFields) so unrelated frontmatter edits on
// a section index never trigger the descendant cascade.
func navMetadataHash(metadata map[string]any) string {
	var parts []string
	for _, field := range model.NavMetadataFields {
		parts = append(parts, fmt.Sprintf("%s=%v", field, metadata[field]))
	}
	return bhash.Content(strings.Join(parts, "|"))
}

func isUnderAny(path string, roots []string) bool {
	for _, root := range roots {
		if bpath.IsAncestorComponent(root, path) {
			return true
		}
	}
	return false
}

func isDataFile(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func outputMissing(outputDir string) bool {
	if outputDir == "" {
		return false
	}
	if _, err := os.Stat(filepath.Join(outputDir, "index.html")); err != nil {
		return true
	}
	return false
}

func sortSummary(s *ChangeSummary) {
	sort.Strings(s.ModifiedContent)
	sort.Strings(s.ModifiedTemplates)
	sort.Strings(s.ModifiedAssets)
	for k := range s.ExtraChanges {
		sort.Strings(s.ExtraChanges[k])
	}
}
