// Package cachecoord is the single supported entry point for invalidating
// a page's cached state. It ensures every cache layer (rendered output,
// parsed content, file fingerprint) is cleared in a fixed order and keeps
// a bounded log of what was invalidated and why.
package cachecoord

import (
	"log"
	"sync"

	"github.com/bengal-ssg/bengal/internal/buildcache"
	"github.com/bengal-ssg/bengal/internal/deptrack"
)

// Reason identifies why a page's caches were cleared.
type Reason int

const (
	ReasonContentChanged Reason = iota
	ReasonDataFileChanged
	ReasonTemplateChanged
	ReasonTaxonomyCascade
	ReasonAssetChanged
	ReasonConfigChanged
	ReasonManual
	ReasonFullBuild
	ReasonOutputMissing
)

func (r Reason) String() string {
	switch r {
	case ReasonContentChanged:
		return "content_changed"
	case ReasonDataFileChanged:
		return "data_file_changed"
	case ReasonTemplateChanged:
		return "template_changed"
	case ReasonTaxonomyCascade:
		return "taxonomy_cascade"
	case ReasonAssetChanged:
		return "asset_changed"
	case ReasonConfigChanged:
		return "config_changed"
	case ReasonManual:
		return "manual"
	case ReasonFullBuild:
		return "full_build"
	case ReasonOutputMissing:
		return "output_missing"
	default:
		return "unknown"
	}
}

// InvalidationEvent records one invalidate_page call and which cache
// layers actually had something to clear.
type InvalidationEvent struct {
	PagePath      string
	Reason        Reason
	Trigger       string
	CachesCleared []string
}

// maxEvents bounds the retained event log so long-lived watch sessions
// don't grow it without limit.
const maxEvents = 10_000

// Coordinator is the only supported way to invalidate a page's caches.
// Safe for concurrent use.
type Coordinator struct {
	cache   *buildcache.Cache
	tracker *deptrack.Tracker

	mu     sync.Mutex
	events []InvalidationEvent
}

// New returns a Coordinator bound to cache and tracker.
func New(cache *buildcache.Cache, tracker *deptrack.Tracker) *Coordinator {
	return &Coordinator{cache: cache, tracker: tracker}
}

// InvalidatePage clears every cache layer for path, in order: rendered
// output, parsed content, fingerprint. This is the only supported way to
// invalidate a page.
func (c *Coordinator) InvalidatePage(path string, reason Reason, trigger string) InvalidationEvent {
	event := InvalidationEvent{PagePath: path, Reason: reason, Trigger: trigger}

	if c.cache.InvalidateRenderedOutput(path) {
		event.CachesCleared = append(event.CachesCleared, "rendered_output")
	}
	if c.cache.InvalidateParsedContent(path) {
		event.CachesCleared = append(event.CachesCleared, "parsed_content")
	}
	if c.cache.InvalidateFingerprint(path) {
		event.CachesCleared = append(event.CachesCleared, "fingerprint")
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	if len(c.events) > maxEvents {
		c.events = c.events[len(c.events)-maxEvents:]
	}
	c.mu.Unlock()

	if len(event.CachesCleared) > 0 {
		log.Printf("[cachecoord] invalidated %s reason=%s trigger=%q caches=%v", path, reason, trigger, event.CachesCleared)
	}

	return event
}

// InvalidateForDataFile invalidates every page tracked as depending on
// dataFile.
func (c *Coordinator) InvalidateForDataFile(dataFile string) []InvalidationEvent {
	affected := c.tracker.Dependents(dataFile)
	events := make([]InvalidationEvent, 0, len(affected))
	for _, page := range affected {
		events = append(events, c.InvalidatePage(page, ReasonDataFileChanged, dataFile))
	}
	if len(events) > 0 {
		log.Printf("[cachecoord] data file invalidation %s affected=%d", dataFile, len(events))
	}
	return events
}

// InvalidateForTemplate invalidates every page that renders through
// templatePath, directly or transitively.
func (c *Coordinator) InvalidateForTemplate(templatePath string) []InvalidationEvent {
	affected := c.cache.GetAffectedPages(templatePath)
	events := make([]InvalidationEvent, 0, len(affected))
	for _, page := range affected {
		events = append(events, c.InvalidatePage(page, ReasonTemplateChanged, templatePath))
	}
	if len(events) > 0 {
		log.Printf("[cachecoord] template invalidation %s affected=%d", templatePath, len(events))
	}
	return events
}

// InvalidateTaxonomyCascade invalidates the taxonomy listing pages in
// termPages because memberPage's metadata changed.
func (c *Coordinator) InvalidateTaxonomyCascade(memberPage string, termPages []string) []InvalidationEvent {
	events := make([]InvalidationEvent, 0, len(termPages))
	for _, term := range termPages {
		events = append(events, c.InvalidatePage(term, ReasonTaxonomyCascade, memberPage))
	}
	if len(events) > 0 {
		log.Printf("[cachecoord] taxonomy cascade from %s affected=%d", memberPage, len(events))
	}
	return events
}

// InvalidateAll invalidates every page in pages, for use before a full
// rebuild.
func (c *Coordinator) InvalidateAll(pages []string, reason Reason) int {
	for _, page := range pages {
		c.InvalidatePage(page, reason, "full_build")
	}
	log.Printf("[cachecoord] full invalidation reason=%s pages=%d", reason, len(pages))
	return len(pages)
}

// Events returns a copy of the retained invalidation log.
func (c *Coordinator) Events() []InvalidationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]InvalidationEvent, len(c.events))
	copy(out, c.events)
	return out
}

// ClearEvents empties the event log. Call at the start of each build.
func (c *Coordinator) ClearEvents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// Stats returns invalidation counts per reason, plus the total.
func (c *Coordinator) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := map[string]int{"total_invalidations": len(c.events)}
	for _, e := range c.events {
		stats[e.Reason.String()]++
	}
	return stats
}
