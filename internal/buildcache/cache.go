// Package buildcache implements the persisted incremental-build cache:
// per-file fingerprints, parsed/rendered-output caches, and the reverse
// dependency lookups the change detector relies on.
package buildcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/bengal-ssg/bengal/internal/bhash"
	"github.com/bengal-ssg/bengal/internal/depgraph"
)

// Version is bumped whenever the on-disk cache format changes incompatibly.
const Version = 1

// Fingerprint records a file's last-observed (mtime, size, hash) triple.
type Fingerprint struct {
	ModTime int64  `json:"mtime"`
	Size    int64  `json:"size"`
	Hash    string `json:"hash"`
}

// Cache is the persisted incremental-build state for one site root.
type Cache struct {
	mu sync.RWMutex

	Version int `json:"version"`

	ConfigHash    string `json:"config_hash"`
	TemplatesHash string `json:"templates_hash"`

	// LastBuild is the RFC3339 timestamp of the last successful build,
	// used by the change detector's section mtime filter (§4.8 step 1).
	LastBuild string `json:"last_build,omitempty"`

	Fingerprints map[string]*Fingerprint `json:"fingerprints"`
	Tags         map[string][]string     `json:"tags,omitempty"`

	ParsedContent  map[string]string `json:"parsed_content,omitempty"`
	RenderedOutput map[string]string `json:"rendered_output,omitempty"`

	// NavMetadataHashes records, per section-index source path, a hash of
	// that page's nav-affecting metadata subset (title, weight, icon,
	// menu-visibility, child-ordering). The change detector compares a
	// freshly computed hash against this to decide whether a section-index
	// edit requires rebuilding every descendant page.
	NavMetadataHashes map[string]string `json:"nav_metadata_hashes,omitempty"`

	Graph *depgraph.Graph `json:"graph,omitempty"`

	// AutodocSources maps a tracked autodoc source key to its last-seen hash.
	AutodocSources map[string]string `json:"autodoc_sources,omitempty"`
	// AutodocDependencies maps an autodoc source key to the generated pages
	// it produced.
	AutodocDependencies map[string][]string `json:"autodoc_dependencies,omitempty"`

	path string

	dirty bool

	// pendingFingerprints holds update_file() calls made during rendering,
	// applied only by Flush on a successful build.
	pendingFingerprints map[string]*Fingerprint

	skippedCount atomic.Int64
	rebuiltCount atomic.Int64

	requiresFullRebuild bool
}

// New returns an empty cache for path (the cache file location).
func New(path string) *Cache {
	return &Cache{
		Version:             Version,
		Fingerprints:        make(map[string]*Fingerprint),
		Tags:                make(map[string][]string),
		ParsedContent:       make(map[string]string),
		RenderedOutput:      make(map[string]string),
		NavMetadataHashes:   make(map[string]string),
		Graph:               depgraph.New(),
		AutodocSources:      make(map[string]string),
		AutodocDependencies: make(map[string][]string),
		path:                path,
		pendingFingerprints: make(map[string]*Fingerprint),
	}
}

// onDiskCache is the subset of Cache that round-trips through JSON; the
// unexported runtime fields (mu, path, dirty, pending, counters) are never
// serialized.
type onDiskCache struct {
	Version             int                     `json:"version"`
	ConfigHash          string                  `json:"config_hash"`
	TemplatesHash       string                  `json:"templates_hash"`
	LastBuild           string                  `json:"last_build,omitempty"`
	Fingerprints        map[string]*Fingerprint `json:"fingerprints"`
	Tags                map[string][]string     `json:"tags,omitempty"`
	ParsedContent       map[string]string       `json:"parsed_content,omitempty"`
	RenderedOutput      map[string]string       `json:"rendered_output,omitempty"`
	NavMetadataHashes   map[string]string       `json:"nav_metadata_hashes,omitempty"`
	Graph               *depgraph.Graph         `json:"graph,omitempty"`
	AutodocSources      map[string]string       `json:"autodoc_sources,omitempty"`
	AutodocDependencies map[string][]string     `json:"autodoc_dependencies,omitempty"`
}

func (c *Cache) toDisk() *onDiskCache {
	return &onDiskCache{
		Version:             c.Version,
		ConfigHash:          c.ConfigHash,
		TemplatesHash:       c.TemplatesHash,
		LastBuild:           c.LastBuild,
		Fingerprints:        c.Fingerprints,
		Tags:                c.Tags,
		ParsedContent:       c.ParsedContent,
		RenderedOutput:      c.RenderedOutput,
		NavMetadataHashes:   c.NavMetadataHashes,
		Graph:               c.Graph,
		AutodocSources:      c.AutodocSources,
		AutodocDependencies: c.AutodocDependencies,
	}
}

// Load reads the cache from path (or the compressed sibling path+".zst"),
// tolerating corruption, version mismatch, and absence by returning a fresh
// cache in each case.
func Load(path string) (*Cache, error) {
	data, compressed, err := readCacheFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return New(path), nil
	}

	if compressed {
		decoded, err := decompressZstd(data)
		if err != nil {
			return New(path), nil
		}
		data = decoded
	}

	var disk onDiskCache
	if err := json.Unmarshal(data, &disk); err != nil {
		return New(path), nil
	}
	if disk.Version != Version {
		return New(path), nil
	}

	c := New(path)
	c.ConfigHash = disk.ConfigHash
	c.TemplatesHash = disk.TemplatesHash
	c.LastBuild = disk.LastBuild
	if disk.Fingerprints != nil {
		c.Fingerprints = disk.Fingerprints
	}
	if disk.Tags != nil {
		c.Tags = disk.Tags
	}
	if disk.ParsedContent != nil {
		c.ParsedContent = disk.ParsedContent
	}
	if disk.RenderedOutput != nil {
		c.RenderedOutput = disk.RenderedOutput
	}
	if disk.NavMetadataHashes != nil {
		c.NavMetadataHashes = disk.NavMetadataHashes
	}
	if disk.AutodocSources != nil {
		c.AutodocSources = disk.AutodocSources
	}
	if disk.AutodocDependencies != nil {
		c.AutodocDependencies = disk.AutodocDependencies
	}
	if disk.Graph != nil {
		c.Graph = disk.Graph
		c.Graph.RebuildReverse()
	}
	return c, nil
}

func readCacheFile(path string) ([]byte, bool, error) {
	if data, err := os.ReadFile(path); err == nil {
		return data, false, nil
	}
	zstPath := path + ".zst"
	data, err := os.ReadFile(zstPath)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Save writes the cache to disk atomically (temp file + rename), optionally
// zstd-compressed, if it is dirty.
func (c *Cache) Save(compress bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	data, err := json.Marshal(c.toDisk())
	if err != nil {
		return fmt.Errorf("marshaling build cache: %w", err)
	}

	target := c.path
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("creating zstd encoder: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
		target = c.path + ".zst"
	}

	if err := atomicWrite(target, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp cache file: %w", err)
	}
	return nil
}

// IsChanged reports whether path has changed since the last recorded
// fingerprint. On a fast-path hit ((mtime,size) match) it never rehashes.
// On a slow-path hit (hash matches but (mtime,size) differ) it updates the
// stored (mtime,size) in place and returns false.
func (c *Cache) IsChanged(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}

	c.mu.RLock()
	fp, ok := c.Fingerprints[path]
	c.mu.RUnlock()
	if !ok {
		return true
	}

	mtime := info.ModTime().UnixNano()
	size := info.Size()
	if fp.ModTime == mtime && fp.Size == size {
		return false
	}

	hash, err := bhash.File(path)
	if err != nil {
		return true
	}
	if hash == fp.Hash {
		c.mu.Lock()
		fp.ModTime = mtime
		fp.Size = size
		c.dirty = true
		c.mu.Unlock()
		return false
	}
	return true
}

// UpdateFile recomputes and stores path's fingerprint immediately. Use
// UpdateFileDeferred for updates made mid-render.
func (c *Cache) UpdateFile(path string) error {
	fp, err := computeFingerprint(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.Fingerprints[path] = fp
	c.dirty = true
	c.mu.Unlock()
	return nil
}

// UpdateFileDeferred queues a fingerprint update without applying it. Call
// Flush on a successful build, or Reset to discard on failure (invariant 7).
func (c *Cache) UpdateFileDeferred(path string) error {
	fp, err := computeFingerprint(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.pendingFingerprints[path] = fp
	c.mu.Unlock()
	return nil
}

// Flush applies every queued deferred fingerprint update.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, fp := range c.pendingFingerprints {
		c.Fingerprints[path] = fp
	}
	if len(c.pendingFingerprints) > 0 {
		c.dirty = true
	}
	c.pendingFingerprints = make(map[string]*Fingerprint)
}

// ResetPendingUpdates discards every queued deferred fingerprint update.
func (c *Cache) ResetPendingUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingFingerprints = make(map[string]*Fingerprint)
}

func computeFingerprint(path string) (*Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	hash, err := bhash.File(path)
	if err != nil {
		return nil, err
	}
	return &Fingerprint{ModTime: info.ModTime().UnixNano(), Size: info.Size(), Hash: hash}, nil
}

// UpdateTags records the tags observed for path during the current build.
func (c *Cache) UpdateTags(path string, tags []string) {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Tags[path] = sorted
	c.dirty = true
}

// GetPreviousTags returns the tags recorded for path in the prior build.
func (c *Cache) GetPreviousTags(path string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.Tags[path]...)
}

// InvalidateRenderedOutput removes path's cached rendered output. Returns
// whether an entry was removed.
func (c *Cache) InvalidateRenderedOutput(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.RenderedOutput[path]; !ok {
		return false
	}
	delete(c.RenderedOutput, path)
	c.dirty = true
	return true
}

// GetRenderedOutput returns path's cached rendered HTML, if any. The
// caller is responsible for the rest of the render-cache-hit contract
// (§4.10: parsed-content hit, asset-manifest mtime match, no changed
// dependency) before trusting this as reusable.
func (c *Cache) GetRenderedOutput(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	html, ok := c.RenderedOutput[path]
	return html, ok
}

// SetRenderedOutput records path's freshly rendered HTML for reuse on a
// future incremental run.
func (c *Cache) SetRenderedOutput(path, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RenderedOutput[path] = html
	c.dirty = true
}

// InvalidateParsedContent removes path's cached parsed content.
func (c *Cache) InvalidateParsedContent(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ParsedContent[path]; !ok {
		return false
	}
	delete(c.ParsedContent, path)
	c.dirty = true
	return true
}

// InvalidateFingerprint removes path's stored fingerprint, forcing IsChanged
// to report true on the next check.
func (c *Cache) InvalidateFingerprint(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Fingerprints[path]; !ok {
		return false
	}
	delete(c.Fingerprints, path)
	c.dirty = true
	return true
}

// GetLastBuild returns the timestamp of the last successful build, or the
// zero time if none is recorded.
func (c *Cache) GetLastBuild() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, _ := time.Parse(time.RFC3339, c.LastBuild)
	return t
}

// SetLastBuild records when the current build completed.
func (c *Cache) SetLastBuild(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastBuild = t.UTC().Format(time.RFC3339)
	c.dirty = true
}

// GetNavMetadataHash returns the previously recorded nav-metadata hash for
// a section-index source path, or "" if none is recorded.
func (c *Cache) GetNavMetadataHash(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NavMetadataHashes[path]
}

// SetNavMetadataHash records the current nav-metadata hash for a
// section-index source path.
func (c *Cache) SetNavMetadataHash(path, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NavMetadataHashes[path] = hash
	c.dirty = true
}

// GetAffectedPages returns every page that transitively depends on
// templatePath.
func (c *Cache) GetAffectedPages(templatePath string) []string {
	return c.Graph.GetAffectedPages([]string{templatePath})
}

// SetDependencies records the set of targets page depends on.
func (c *Cache) SetDependencies(page string, targets []string) {
	c.Graph.SetDependencies(page, targets)
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// GetAutodocSourceFiles returns the tracked autodoc source keys.
func (c *Cache) GetAutodocSourceFiles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.AutodocSources))
	for k := range c.AutodocSources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GetAffectedAutodocPages returns the generated pages attributed to source.
func (c *Cache) GetAffectedAutodocPages(source string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.AutodocDependencies[source]...)
}

// SetAutodocSource records the current hash and generated-page set for an
// autodoc source key.
func (c *Cache) SetAutodocSource(source, hash string, generatedPages []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AutodocSources[source] = hash
	c.AutodocDependencies[source] = append([]string(nil), generatedPages...)
	c.dirty = true
}

// GetStaleAutodocSources recomputes the hash of every tracked autodoc
// source and returns the keys whose hash no longer
// matches, via hashFn (injected so callers can hash arbitrary source kinds:
// files, directories, reflected symbols).
func (c *Cache) GetStaleAutodocSources(hashFn func(source string) (string, error)) ([]string, error) {
	c.mu.RLock()
	sources := make(map[string]string, len(c.AutodocSources))
	for k, v := range c.AutodocSources {
		sources[k] = v
	}
	c.mu.RUnlock()

	var stale []string
	for source, prevHash := range sources {
		hash, err := hashFn(source)
		if err != nil {
			return nil, err
		}
		if hash != prevHash {
			stale = append(stale, source)
		}
	}
	sort.Strings(stale)
	return stale, nil
}

// ValidateConfig compares configHash against the stored ConfigHash. On
// mismatch, it clears the cache's per-page state (forcing a full rebuild)
// and returns false.
func (c *Cache) ValidateConfig(configHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ConfigHash == configHash {
		return true
	}
	c.ConfigHash = configHash
	c.Fingerprints = make(map[string]*Fingerprint)
	c.ParsedContent = make(map[string]string)
	c.RenderedOutput = make(map[string]string)
	c.requiresFullRebuild = true
	c.dirty = true
	return false
}

// RequiresFullRebuild reports whether the last ValidateConfig call detected
// a mismatch.
func (c *Cache) RequiresFullRebuild() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requiresFullRebuild
}

// ShouldBypass reports whether path should skip incremental reuse: either
// because it is in the caller's explicit changed-paths set, or because
// IsChanged(path) is true.
func (c *Cache) ShouldBypass(path string, explicitChanged map[string]bool) bool {
	if explicitChanged[path] {
		return true
	}
	return c.IsChanged(path)
}

// MarkRebuilt increments the rebuilt-page counter for this build.
func (c *Cache) MarkRebuilt() { c.rebuiltCount.Add(1) }

// MarkSkipped increments the skipped-page counter for this build.
func (c *Cache) MarkSkipped() { c.skippedCount.Add(1) }

// Stats returns the (skipped, rebuilt) counters for the current build.
func (c *Cache) Stats() (skipped, rebuilt int) {
	return int(c.skippedCount.Load()), int(c.rebuiltCount.Load())
}

// ResetStats zeroes the per-build counters.
func (c *Cache) ResetStats() {
	c.skippedCount.Store(0)
	c.rebuiltCount.Store(0)
	c.mu.Lock()
	c.requiresFullRebuild = false
	c.mu.Unlock()
}

// RemoveStale drops fingerprints, parsed content, rendered output, and
// dependency edges for any path not present in currentPaths.
func (c *Cache) RemoveStale(currentPaths map[string]bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for path := range c.Fingerprints {
		if !currentPaths[path] {
			delete(c.Fingerprints, path)
			delete(c.ParsedContent, path)
			delete(c.RenderedOutput, path)
			c.Graph.RemoveSource(path)
			removed++
			c.dirty = true
		}
	}
	return removed
}
