package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides overlays environment variables prefixed with
// cfg.EnvPrefix onto cfg. Nested keys use underscores, e.g.
// BENGAL_BUILD_WORKERS=4. Applied after file load and before the config
// hash is computed, so environment changes participate in invalidation.
func ApplyEnvOverrides(cfg *Config) {
	prefix := cfg.EnvPrefix
	if prefix == "" {
		prefix = "BENGAL_"
	}
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, prefix) {
			continue
		}
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], prefix))
		applyEnvOverride(cfg, key, parts[1])
	}
}

func applyEnvOverride(cfg *Config, key, value string) {
	switch key {
	case "content_dir":
		cfg.ContentDir = value
	case "output_dir":
		cfg.OutputDir = value
	case "templates_dir":
		cfg.TemplatesDir = value
	case "assets_dir":
		cfg.AssetsDir = value
	case "theme":
		cfg.Theme = value
	case "title":
		cfg.Title = value
	case "baseurl", "url":
		cfg.BaseURL = value
	case "description":
		cfg.Description = value
	case "build_parallel":
		cfg.Build.Parallel = parseBool(value)
	case "build_workers":
		if n, err := strconv.Atoi(value); err == nil {
			cfg.Build.Workers = n
		}
	case "build_incremental":
		cfg.Build.Incremental = parseBool(value)
	case "shared_dirs":
		cfg.SharedDirs = parseList(value)
	case "i18n_strategy":
		cfg.I18n.Strategy = value
	case "i18n_languages":
		cfg.I18n.Languages = parseList(value)
	case "sitemap_enabled":
		cfg.Sitemap.Enabled = parseBool(value)
	case "feed_enabled":
		cfg.Feed.Enabled = parseBool(value)
	case "feed_max_items":
		if n, err := strconv.Atoi(value); err == nil {
			cfg.Feed.MaxItems = n
		}
	case "asset_manifest":
		cfg.AssetManifest = parseBool(value)
	case "max_schema_depth":
		if n, err := strconv.Atoi(value); err == nil {
			cfg.MaxSchemaDepth = n
		}
	case "cache_compress":
		cfg.Cache.Compress = parseBool(value)
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func parseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
