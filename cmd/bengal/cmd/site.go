package cmd

import (
	"fmt"

	"github.com/bengal-ssg/bengal/internal/bhash"
	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/buildcache"
	"github.com/bengal-ssg/bengal/internal/cachecoord"
	"github.com/bengal-ssg/bengal/internal/config"
	"github.com/bengal-ssg/bengal/internal/deptrack"
	"github.com/bengal-ssg/bengal/internal/pipeline"
	"github.com/bengal-ssg/bengal/internal/render"
	"github.com/bengal-ssg/bengal/internal/streamcache"
)

// site bundles every long-lived collaborator a pipeline run needs, assembled
// once per CLI invocation from the discovered config and on-disk caches.
type site struct {
	root   string
	cfg    *config.Config
	cache  *buildcache.Cache
	stream *streamcache.Cache
}

// loadSite discovers and loads the project configuration and its build
// caches, validating the config hash to decide whether the cache must be
// discarded for a full rebuild.
func loadSite() (*site, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	cfg, err := config.Load(root, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", errs[0])
	}

	// Load always takes the uncompressed path; it falls back to the
	// compressed sibling (path+".zst") on its own when present.
	cache, err := buildcache.Load(bpath.CachePath(root))
	if err != nil {
		return nil, fmt.Errorf("loading build cache: %w", err)
	}

	configHash, err := bhash.ConfigHash(cfg.ToMap())
	if err != nil {
		return nil, fmt.Errorf("hashing config: %w", err)
	}
	if !cache.ValidateConfig(configHash) {
		logf("configuration changed since last build; forcing a full rebuild")
	}

	streamCache := streamcache.Open(bpath.StreamCachePath(root))

	return &site{root: root, cfg: cfg, cache: cache, stream: streamCache}, nil
}

// pipelineOptions builds a pipeline.Options wired to this site's caches.
func (s *site) pipelineOptions(incremental bool, workers int) pipeline.Options {
	tracker := deptrack.New(s.cache)
	return pipeline.Options{
		ProjectRoot: s.root,
		Config:      s.cfg,
		Parser:      render.NewGoldmarkParser(),
		Template:    render.NewEngine([]string{s.cfg.TemplatesDir}),
		BuildCache:  s.cache,
		Tracker:     tracker,
		StreamCache: s.stream,
		Coordinator: cachecoord.New(s.cache, tracker),
		Workers:     workers,
		Incremental: incremental,
	}
}

// save persists both on-disk caches.
func (s *site) save() error {
	if err := s.cache.Save(s.cfg.Cache.Compress); err != nil {
		return fmt.Errorf("saving build cache: %w", err)
	}
	if err := s.stream.Save(); err != nil {
		return fmt.Errorf("saving stream cache: %w", err)
	}
	return nil
}
