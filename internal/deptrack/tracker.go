// Package deptrack records per-page dependency edges (templates, partials,
// config, data files, taxonomy membership) discovered while rendering, and
// folds them into the shared dependency graph once a page finishes.
package deptrack

import (
	"sync"

	"github.com/bengal-ssg/bengal/internal/buildcache"
)

// Tracker owns the shared dependency and taxonomy-membership indices. A
// render worker opens a page-scoped Scope with StartPage, records edges on
// it, and commits them with Scope.End — the scope is an ordinary value
// passed down the call stack rather than thread-local state, so concurrent
// renders on separate goroutines never share mutable tracking state.
type Tracker struct {
	mu sync.Mutex

	dependencies        map[string]map[string]bool
	reverseDependencies map[string]map[string]bool

	taxonomyMembers map[string]map[string]bool // term key -> pages
	reverseTaxonomy map[string]map[string]bool // page -> term keys

	cache *buildcache.Cache
}

// New returns an empty Tracker. cache may be nil if deferred fingerprint
// flushing is not needed (e.g. in tests).
func New(cache *buildcache.Cache) *Tracker {
	return &Tracker{
		dependencies:        make(map[string]map[string]bool),
		reverseDependencies: make(map[string]map[string]bool),
		taxonomyMembers:     make(map[string]map[string]bool),
		reverseTaxonomy:     make(map[string]map[string]bool),
		cache:               cache,
	}
}

// Scope accumulates dependency edges for a single page render. A nil Scope
// is valid and every method on it is a no-op, so track_* calls made outside
// a start_page/end_page window never error.
type Scope struct {
	tracker *Tracker
	page    string
	deps    map[string]bool
	tags    map[string]bool
	ended   bool
}

// StartPage opens a tracking scope for path.
func (t *Tracker) StartPage(path string) *Scope {
	return &Scope{tracker: t, page: path, deps: make(map[string]bool), tags: make(map[string]bool)}
}

func (s *Scope) track(dep string) {
	if s == nil || dep == "" {
		return
	}
	s.deps[dep] = true
}

// TrackTemplate records a template dependency and queues its fingerprint
// for deferred update (templates are read mid-render).
func (s *Scope) TrackTemplate(path string) {
	s.track(path)
	if s != nil && s.tracker.cache != nil {
		_ = s.tracker.cache.UpdateFileDeferred(path)
	}
}

// TrackPartial records a partial-template dependency, deferred like TrackTemplate.
func (s *Scope) TrackPartial(path string) {
	s.track(path)
	if s != nil && s.tracker.cache != nil {
		_ = s.tracker.cache.UpdateFileDeferred(path)
	}
}

// TrackConfig records a dependency on the configuration as a whole.
func (s *Scope) TrackConfig(path string) { s.track(path) }

// TrackDataFile records a dependency on a content/data/* file.
func (s *Scope) TrackDataFile(path string) { s.track(path) }

// TrackTaxonomy records that the page is a member of each of tags.
func (s *Scope) TrackTaxonomy(tags []string) {
	if s == nil {
		return
	}
	for _, tag := range tags {
		s.tags[tag] = true
	}
}

// End commits the scope's accumulated edges to the tracker. Idempotent.
func (s *Scope) End() {
	if s == nil || s.ended {
		return
	}
	s.ended = true
	deps := make([]string, 0, len(s.deps))
	for d := range s.deps {
		deps = append(deps, d)
	}
	tags := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	s.tracker.commit(s.page, deps, tags)
}

func (t *Tracker) commit(page string, deps, tags []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for old := range t.dependencies[page] {
		if revs := t.reverseDependencies[old]; revs != nil {
			delete(revs, page)
			if len(revs) == 0 {
				delete(t.reverseDependencies, old)
			}
		}
	}
	if len(deps) == 0 {
		delete(t.dependencies, page)
	} else {
		set := make(map[string]bool, len(deps))
		for _, d := range deps {
			set[d] = true
			if t.reverseDependencies[d] == nil {
				t.reverseDependencies[d] = make(map[string]bool)
			}
			t.reverseDependencies[d][page] = true
		}
		t.dependencies[page] = set
	}

	for old := range t.reverseTaxonomy[page] {
		if members := t.taxonomyMembers[old]; members != nil {
			delete(members, page)
			if len(members) == 0 {
				delete(t.taxonomyMembers, old)
			}
		}
	}
	if len(tags) == 0 {
		delete(t.reverseTaxonomy, page)
	} else {
		set := make(map[string]bool, len(tags))
		for _, tag := range tags {
			set[tag] = true
			if t.taxonomyMembers[tag] == nil {
				t.taxonomyMembers[tag] = make(map[string]bool)
			}
			t.taxonomyMembers[tag][page] = true
		}
		t.reverseTaxonomy[page] = set
	}
}

// Dependencies returns the recorded dependency set for page.
func (t *Tracker) Dependencies(page string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return setToSlice(t.dependencies[page])
}

// Dependents returns the pages that depend on dep.
func (t *Tracker) Dependents(dep string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return setToSlice(t.reverseDependencies[dep])
}

// TaxonomyMembers returns the pages tagged with term.
func (t *Tracker) TaxonomyMembers(term string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return setToSlice(t.taxonomyMembers[term])
}

// FlushPendingUpdates commits every deferred fingerprint update queued via
// TrackTemplate/TrackPartial to the underlying cache.
func (t *Tracker) FlushPendingUpdates() {
	if t.cache != nil {
		t.cache.Flush()
	}
}

// ResetPendingUpdates discards every deferred fingerprint update queued
// this build.
func (t *Tracker) ResetPendingUpdates() {
	if t.cache != nil {
		t.cache.ResetPendingUpdates()
	}
}

func setToSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
