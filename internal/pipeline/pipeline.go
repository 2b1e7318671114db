// Package pipeline wires the discover, parse, render, and write stages
// into the stream dataflow graph that turns a content directory into a
// built site, plus the supporting section/taxonomy/menu assembly and
// postprocess artifact generation that happen around it.
package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bengal-ssg/bengal/internal/bhash"
	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/buildcache"
	"github.com/bengal-ssg/bengal/internal/cachecoord"
	"github.com/bengal-ssg/bengal/internal/collections"
	"github.com/bengal-ssg/bengal/internal/config"
	"github.com/bengal-ssg/bengal/internal/deptrack"
	"github.com/bengal-ssg/bengal/internal/detect"
	"github.com/bengal-ssg/bengal/internal/model"
	"github.com/bengal-ssg/bengal/internal/postprocess"
	"github.com/bengal-ssg/bengal/internal/render"
	"github.com/bengal-ssg/bengal/internal/stream"
	"github.com/bengal-ssg/bengal/internal/streamcache"
	"github.com/bengal-ssg/bengal/internal/writer"
)

const (
	defaultPageTemplate = "page.html"
	defaultListTemplate = "list.html"
	defaultTagTemplate  = "tag.html"
	defaultNotFoundPath = "404.html"
)

// Options configures a Pipeline run.
type Options struct {
	ProjectRoot string
	Config      *config.Config

	Parser   render.Parser
	Template render.TemplateEngine

	BuildCache  *buildcache.Cache
	Tracker     *deptrack.Tracker
	StreamCache *streamcache.Cache
	Coordinator *cachecoord.Coordinator

	// Workers bounds the page-render worker pool; a value below 1 runs
	// sequentially.
	Workers int

	// Incremental, when true, asks the change detector (§4.8) for the
	// minimal pages_to_build/assets_to_process sets and reuses cached
	// rendered output and asset copies for everything else. When false,
	// every page is rendered and every asset copied unconditionally (a
	// full rebuild, per §2 step 2's config-hash/output-missing triggers).
	Incremental bool

	// ForcedChanged and NavChanged are externally signaled changed-path
	// sets (typically a dev-server watcher batch); both may be nil.
	ForcedChanged map[string]bool
	NavChanged    map[string]bool
}

// Result summarizes one pipeline run.
type Result struct {
	Root    *model.Section
	Pages   []*model.Page
	Menu    *model.Menu
	Written []writer.Result
	Assets  []writer.Result

	// Summary is the human-readable change breakdown the detector produced;
	// zero-valued on a full (non-incremental) build.
	Summary detect.ChangeSummary

	PagesRebuilt int
	PagesSkipped int
}

// Pipeline runs the full discover-through-write build for one project.
type Pipeline struct {
	opts Options
}

// New builds a Pipeline from opts.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Run executes a build, incremental when Options.Incremental is set, and
// returns its result. The search index and special pages are written alongside
// rendered pages on every run; sitemap, feed, and redirects only on a full
// (non-incremental) build.
func (p *Pipeline) Run() (*Result, error) {
	opts := p.opts
	cfg := opts.Config

	router := buildRouter(cfg)

	parseStage := p.buildParseStage(router)
	pageStage := stream.Map(parseStage, "page", func(page *model.Page) (*model.Page, error) {
		return renderContent(opts.Parser, page)
	})
	parallelPageStage := stream.Parallel(pageStage, "page-parallel", opts.Workers)

	collected, err := stream.Collect(parallelPageStage, "collect-pages").Materialize()
	if err != nil {
		return nil, fmt.Errorf("collecting pages: %w", err)
	}
	var pages []*model.Page
	if len(collected) > 0 {
		pages = collected[0]
	}

	taxPages := buildTaxonomyPages(opts.ProjectRoot, pages)
	for _, tp := range taxPages {
		rendered, err := renderContent(opts.Parser, tp)
		if err != nil {
			return nil, fmt.Errorf("rendering taxonomy page: %w", err)
		}
		pages = append(pages, rendered)
	}

	assignDefaultTemplates(pages, cfg)

	root, bySection := assembleSections(pages)
	menu := buildMainMenu(root)

	assets, err := discoverAssets(cfg.AssetsDir)
	if err != nil {
		return nil, err
	}

	coordinator := opts.Coordinator
	if coordinator == nil {
		coordinator = cachecoord.New(opts.BuildCache, opts.Tracker)
	}

	var det detect.Result
	incremental := opts.Incremental && !opts.BuildCache.RequiresFullRebuild()
	if incremental {
		det = detect.Detect(detect.Input{
			Root:          opts.ProjectRoot,
			Sections:      flattenSections(bySection),
			Pages:         pages,
			Assets:        assets,
			Cache:         opts.BuildCache,
			Tracker:       opts.Tracker,
			Coordinator:   coordinator,
			ForcedChanged: opts.ForcedChanged,
			NavChanged:    opts.NavChanged,
			LastBuild:     opts.BuildCache.GetLastBuild(),
			SharedDirs:    absolutePaths(opts.ProjectRoot, cfg.SharedDirs),
			TemplateRoots: absolutePaths(opts.ProjectRoot, []string{
				cfg.TemplatesDir,
				filepath.Join("themes", cfg.Theme, "templates"),
			}),
			DataFileExts: []string{".yaml", ".yml", ".json", ".toml"},
			OutputDir:    cfg.OutputDir,
			TaxonomyTermPage: func(tag string) string {
				return bpath.GeneratedTagPath(opts.ProjectRoot, slugifyTag(tag))
			},
		})
	}
	rebuildSet := toSet(det.PagesToBuild)
	assetSet := toSet(det.AssetsToProcess)

	navigation := map[string]any{"menus": map[string]*model.Menu{"main": menu}}

	rendered := make(map[string][]byte, len(pages))
	pagesRebuilt, pagesSkipped := 0, 0
	for _, page := range pages {
		outputPath := bpath.OutputPathForURL(page.Href)

		if incremental && !rebuildSet[page.SourcePath] {
			if cached, ok := opts.BuildCache.GetRenderedOutput(page.SourcePath); ok {
				rendered[outputPath] = []byte(cached)
				opts.BuildCache.MarkSkipped()
				pagesSkipped++
				continue
			}
		}

		scope := opts.Tracker.StartPage(page.SourcePath)
		html, err := opts.Template.RenderPage(page, navigation, scope)
		scope.End()
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", page.SourcePath, err)
		}
		rendered[outputPath] = []byte(html)
		opts.BuildCache.SetRenderedOutput(page.SourcePath, html)
		opts.BuildCache.SetDependencies(page.SourcePath, opts.Tracker.Dependencies(page.SourcePath))
		opts.BuildCache.MarkRebuilt()
		pagesRebuilt++
	}

	postprocessArtifacts, err := p.buildPostprocess(pages, rendered, !incremental)
	if err != nil {
		return nil, err
	}
	for path, data := range postprocessArtifacts {
		rendered[path] = data
	}

	written := writer.WriteAll(cfg.OutputDir, rendered)
	if writer.AnyFailed(written) {
		opts.Tracker.ResetPendingUpdates()
		return nil, fmt.Errorf("one or more pages failed to write")
	}

	assetResults := make([]writer.Result, 0, len(assets))
	for _, asset := range assets {
		if incremental && !assetSet[asset.SourcePath] {
			continue
		}
		err := copyAsset(asset, cfg.AssetsDir, cfg.OutputDir)
		assetResults = append(assetResults, writer.Result{OutputPath: asset.OutputPath, Err: err})
		if err == nil {
			_ = opts.BuildCache.UpdateFile(asset.SourcePath)
		}
	}

	for _, page := range pages {
		if page.Generated {
			continue
		}
		_ = opts.BuildCache.UpdateFile(page.SourcePath)
	}

	opts.Tracker.FlushPendingUpdates()
	opts.BuildCache.SetLastBuild(time.Now())

	return &Result{
		Root:         root,
		Pages:        pages,
		Menu:         menu,
		Written:      written,
		Assets:       assetResults,
		Summary:      det.Summary,
		PagesRebuilt: pagesRebuilt,
		PagesSkipped: pagesSkipped,
	}, nil
}

func flattenSections(bySection map[string]*model.Section) []*model.Section {
	out := make([]*model.Section, 0, len(bySection))
	for _, s := range bySection {
		out = append(out, s)
	}
	return out
}

func absolutePaths(root string, dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, bpath.ToPosix(filepath.Join(root, d)))
	}
	return out
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

func buildRouter(cfg *config.Config) *collections.Router {
	return buildRouterWithValidators(cfg, nil)
}

// buildParseStage wires discover+parse into a disk-cached stream stage.
// Disk caching lives here rather than on the page (render) stage, which
// stays a plain stream.Map so stream.Parallel can still fan it out across
// workers; wrapping page in diskCachedMap too would strip the metadata
// Parallel needs to do that.
func (p *Pipeline) buildParseStage(router *collections.Router) *stream.Stream[*model.Page] {
	contentDir := p.opts.Config.ContentDir

	discoverStage := stream.Source("discover", func() ([]stream.Item[DiscoveredFile], error) {
		files, err := discoverContent(contentDir, router)
		if err != nil {
			return nil, err
		}
		items := make([]stream.Item[DiscoveredFile], 0, len(files))
		for _, f := range files {
			hash, err := bhash.File(filepath.Join(contentDir, filepath.FromSlash(f.Path)))
			if err != nil {
				return nil, fmt.Errorf("hashing %s: %w", f.Path, err)
			}
			items = append(items, stream.NewItemVersion("discover", f.Path, hash, f))
		}
		return items, nil
	})

	return diskCachedMap(discoverStage, "parse", p.opts.StreamCache, func(f DiscoveredFile) (*model.Page, error) {
		return parseContentFile(contentDir, f)
	})
}

// assignDefaultTemplates gives every page lacking an explicit template a
// built-in default by kind (section index, tag listing, or regular page).
// A collection's configured template is not consulted.
func assignDefaultTemplates(pages []*model.Page, cfg *config.Config) {
	for _, page := range pages {
		if page.Template != "" {
			continue
		}
		if page.Section == "tags" && page.Generated {
			page.Template = defaultTagTemplate
			continue
		}
		if isIndexPage(page) {
			page.Template = defaultListTemplate
			continue
		}
		page.Template = defaultPageTemplate
	}
}

// buildPostprocess always emits special pages and output formats; sitemap,
// feed, and redirects are full-build-only artifacts (spec §4.10:
// "Incremental builds deliberately skip these unless explicitly requested").
func (p *Pipeline) buildPostprocess(pages []*model.Page, rendered map[string][]byte, fullBuild bool) (map[string][]byte, error) {
	cfg := p.opts.Config
	out := map[string][]byte{}

	if fullBuild && cfg.Sitemap.Enabled {
		data, ok, err := postprocess.BuildSitemap(pages, postprocess.SitemapOptions{
			BaseURL:         cfg.BaseURL,
			I18nEnabled:     cfg.I18n.Strategy != "",
			DefaultLanguage: cfg.I18n.DefaultLanguage,
		})
		if err != nil {
			return nil, fmt.Errorf("building sitemap: %w", err)
		}
		if ok {
			out["sitemap.xml"] = data
		}
	}

	if fullBuild && cfg.Feed.Enabled {
		data, ok, err := postprocess.BuildFeed(pages, postprocess.FeedOptions{
			BaseURL:     cfg.BaseURL,
			Title:       cfg.Title,
			Description: cfg.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("building feed: %w", err)
		}
		if ok {
			out["rss.xml"] = data
		}
	}

	if fullBuild && len(cfg.Redirects) > 0 {
		redirects := make([]postprocess.Redirect, 0, len(cfg.Redirects))
		for _, r := range cfg.Redirects {
			redirects = append(redirects, postprocess.Redirect{From: r.From, To: r.To})
		}
		for path, data := range postprocess.BuildRedirectPages(redirects) {
			out[path] = data
		}
	}

	searchIndex, err := postprocess.BuildSearchIndex(pages)
	if err != nil {
		return nil, fmt.Errorf("building search index: %w", err)
	}
	out["search-index.json"] = searchIndex

	if notFound, ok := rendered[defaultNotFoundPath]; ok {
		for path, data := range postprocess.SpecialPages(string(notFound)) {
			out[path] = data
		}
	}

	return out, nil
}
