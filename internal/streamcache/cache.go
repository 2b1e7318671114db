// Package streamcache persists stream items to disk across builds,
// keyed by stream.Key, so unchanged items never need to be recomputed.
package streamcache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bengal-ssg/bengal/internal/stream"
)

// version guards the on-disk format; a mismatch is treated as a cache
// miss rather than an error.
const version = 1

// entry is one cached stream item, its value serialized with json.Marshal.
type entry struct {
	Source   string    `json:"source"`
	ID       string    `json:"id"`
	Version  string    `json:"version"`
	ValueRaw string    `json:"value_json"`
	CachedAt time.Time `json:"cached_at"`
}

func (e entry) key() stream.Key {
	return stream.Key{Source: e.Source, ID: e.ID, Version: e.Version}
}

type onDisk struct {
	Version int     `json:"version"`
	Entries []entry `json:"entries"`
}

// Cache is a disk-backed store for stream items, keyed by stream.Key.
// Not safe for concurrent use; callers running streams in parallel should
// serialize access to a shared Cache themselves.
type Cache struct {
	dir     string
	entries map[string]entry
	dirty   bool
}

func cacheKey(k stream.Key) string { return k.Source + ":" + k.ID }

// Open loads (or creates) a disk cache rooted at dir.
func Open(dir string) *Cache {
	c := &Cache{dir: dir, entries: make(map[string]entry)}
	c.load()
	return c
}

func (c *Cache) indexPath() string { return filepath.Join(c.dir, "streams.json") }

func (c *Cache) load() {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return
	}
	var disk onDisk
	if err := json.Unmarshal(data, &disk); err != nil {
		log.Printf("[streamcache] corrupt cache at %s, starting fresh: %v", c.indexPath(), err)
		return
	}
	if disk.Version != version {
		log.Printf("[streamcache] cache version mismatch at %s (got %d, want %d), starting fresh", c.indexPath(), disk.Version, version)
		return
	}
	for _, e := range disk.Entries {
		c.entries[cacheKey(e.key())] = e
	}
}

// Get returns the cached, JSON-decoded value for key, or ok=false on a
// cache miss (absent entry or version mismatch).
func Get[T any](c *Cache, key stream.Key) (value T, ok bool) {
	e, found := c.entries[cacheKey(key)]
	if !found || e.Version != key.Version {
		return value, false
	}
	if err := json.Unmarshal([]byte(e.ValueRaw), &value); err != nil {
		log.Printf("[streamcache] failed to decode cached value for %s: %v", key, err)
		return value, false
	}
	return value, true
}

// Put stores value under key, JSON-encoding it.
func Put[T any](c *Cache, key stream.Key, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[cacheKey(key)] = entry{
		Source:   key.Source,
		ID:       key.ID,
		Version:  key.Version,
		ValueRaw: string(raw),
		CachedAt: time.Now(),
	}
	c.dirty = true
	return nil
}

// Invalidate removes key's entry, reporting whether it was present.
func (c *Cache) Invalidate(key stream.Key) bool {
	k := cacheKey(key)
	if _, ok := c.entries[k]; !ok {
		return false
	}
	delete(c.entries, k)
	c.dirty = true
	return true
}

// InvalidateSource removes every entry produced by source, returning the
// count removed.
func (c *Cache) InvalidateSource(source string) int {
	removed := 0
	for k, e := range c.entries {
		if e.Source == source {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.dirty = true
	}
	return removed
}

// Clear removes every entry from the cache.
func (c *Cache) Clear() {
	c.entries = make(map[string]entry)
	c.dirty = true
}

// Save persists the cache to disk if it has unsaved changes.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	disk := onDisk{Version: version, Entries: make([]entry, 0, len(c.entries))}
	for _, e := range c.entries {
		disk.Entries = append(disk.Entries, e)
	}
	data, err := json.MarshalIndent(disk, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.indexPath(), data, 0o644); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Stats reports entry counts, overall and per source.
type Stats struct {
	TotalEntries    int
	EntriesBySource map[string]int
	Dirty           bool
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	bySource := make(map[string]int)
	for _, e := range c.entries {
		bySource[e.Source]++
	}
	return Stats{TotalEntries: len(c.entries), EntriesBySource: bySource, Dirty: c.dirty}
}
