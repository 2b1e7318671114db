// Package config loads, merges, and validates the site configuration.
package config

// Config is the effective site configuration, assembled from defaults, a
// discovered config file, and environment overrides, in that order.
type Config struct {
	ContentDir   string `json:"content_dir" yaml:"content_dir" toml:"content_dir"`
	OutputDir    string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir" toml:"templates_dir"`
	AssetsDir    string `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir"`
	Theme        string `json:"theme" yaml:"theme" toml:"theme"`

	Title       string `json:"title" yaml:"title" toml:"title"`
	BaseURL     string `json:"baseurl" yaml:"baseurl" toml:"baseurl"`
	Description string `json:"description" yaml:"description" toml:"description"`

	// Build controls concurrency and the incremental/full-rebuild default.
	Build BuildConfig `json:"build" yaml:"build" toml:"build"`

	// Collections declares the known content collections, keyed by name.
	Collections map[string]CollectionConfig `json:"collections" yaml:"collections" toml:"collections"`

	// SharedDirs lists directories shared across versioned content trees;
	// a change under one of these forces a full rebuild.
	SharedDirs []string `json:"shared_dirs" yaml:"shared_dirs" toml:"shared_dirs"`

	// VersionAliases maps a version alias (e.g. "latest") to the concrete
	// version directory it currently points at.
	VersionAliases map[string]string `json:"version_aliases" yaml:"version_aliases" toml:"version_aliases"`

	I18n I18nConfig `json:"i18n" yaml:"i18n" toml:"i18n"`

	Sitemap SitemapConfig `json:"sitemap" yaml:"sitemap" toml:"sitemap"`
	Feed    FeedConfig    `json:"feed" yaml:"feed" toml:"feed"`

	AssetManifest bool `json:"asset_manifest" yaml:"asset_manifest" toml:"asset_manifest"`

	// MaxSchemaDepth bounds nested-schema recursion.
	MaxSchemaDepth int `json:"max_schema_depth" yaml:"max_schema_depth" toml:"max_schema_depth"`

	Cache CacheConfig `json:"cache" yaml:"cache" toml:"cache"`

	// Redirects lists static from -> to redirect pages emitted on a full
	// build.
	Redirects []RedirectConfig `json:"redirects" yaml:"redirects" toml:"redirects"`

	// EnvPrefix is the prefix environment overrides must carry to apply to
	// this config (typically "BENGAL_").
	EnvPrefix string `json:"env_prefix" yaml:"env_prefix" toml:"env_prefix"`
}

// RedirectConfig declares one static redirect page.
type RedirectConfig struct {
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
}

// BuildConfig controls worker concurrency and the rebuild strategy default.
type BuildConfig struct {
	Parallel    bool `json:"parallel" yaml:"parallel" toml:"parallel"`
	Workers     int  `json:"workers" yaml:"workers" toml:"workers"`
	Incremental bool `json:"incremental" yaml:"incremental" toml:"incremental"`
}

// CollectionConfig declares a single content collection.
type CollectionConfig struct {
	Directory  string `json:"directory" yaml:"directory" toml:"directory"`
	Glob       string `json:"glob" yaml:"glob" toml:"glob"`
	Strict     bool   `json:"strict" yaml:"strict" toml:"strict"`
	AllowExtra bool   `json:"allow_extra" yaml:"allow_extra" toml:"allow_extra"`
	Template   string `json:"template" yaml:"template" toml:"template"`
}

// I18nConfig configures multi-language content handling.
type I18nConfig struct {
	Strategy        string   `json:"strategy" yaml:"strategy" toml:"strategy"`
	Languages       []string `json:"languages" yaml:"languages" toml:"languages"`
	DefaultLanguage string   `json:"default_language" yaml:"default_language" toml:"default_language"`
}

// SitemapConfig controls sitemap.xml generation.
type SitemapConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// FeedConfig controls rss.xml generation.
type FeedConfig struct {
	Enabled  bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	MaxItems int  `json:"max_items" yaml:"max_items" toml:"max_items"`
}

// CacheConfig controls on-disk build-cache behavior.
type CacheConfig struct {
	Compress bool `json:"compress" yaml:"compress" toml:"compress"`
}

// ToMap flattens the config into the map[string]any form the config-hash
// and schema layers operate on. Internal/runtime fields are never added
// here; bhash.ConfigHash strips "_"-prefixed keys independently.
func (c *Config) ToMap() map[string]any {
	collections := make(map[string]any, len(c.Collections))
	for name, col := range c.Collections {
		collections[name] = map[string]any{
			"directory":   col.Directory,
			"glob":        col.Glob,
			"strict":      col.Strict,
			"allow_extra": col.AllowExtra,
			"template":    col.Template,
		}
	}

	return map[string]any{
		"content_dir":   c.ContentDir,
		"output_dir":    c.OutputDir,
		"templates_dir": c.TemplatesDir,
		"assets_dir":    c.AssetsDir,
		"theme":         c.Theme,
		"title":         c.Title,
		"baseurl":       c.BaseURL,
		"description":   c.Description,
		"build": map[string]any{
			"parallel":    c.Build.Parallel,
			"workers":     c.Build.Workers,
			"incremental": c.Build.Incremental,
		},
		"collections":     collections,
		"shared_dirs":     c.SharedDirs,
		"version_aliases": c.VersionAliases,
		"i18n": map[string]any{
			"strategy":         c.I18n.Strategy,
			"languages":        c.I18n.Languages,
			"default_language": c.I18n.DefaultLanguage,
		},
		"sitemap":          map[string]any{"enabled": c.Sitemap.Enabled},
		"feed":             map[string]any{"enabled": c.Feed.Enabled, "max_items": c.Feed.MaxItems},
		"asset_manifest":   c.AssetManifest,
		"max_schema_depth": c.MaxSchemaDepth,
		"cache":            map[string]any{"compress": c.Cache.Compress},
		"redirects":        redirectsToMap(c.Redirects),
	}
}

func redirectsToMap(redirects []RedirectConfig) []any {
	out := make([]any, 0, len(redirects))
	for _, r := range redirects {
		out = append(out, map[string]any{"from": r.From, "to": r.To})
	}
	return out
}
