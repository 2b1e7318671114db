package config

// Default returns a Config populated with the built-in defaults, before any
// config file or environment overrides are applied.
func Default() *Config {
	return &Config{
		ContentDir:   "content",
		OutputDir:    "public",
		TemplatesDir: "templates",
		AssetsDir:    "assets",
		Theme:        "default",

		Build: BuildConfig{
			Parallel:    true,
			Workers:     0,
			Incremental: true,
		},

		Collections: map[string]CollectionConfig{},

		I18n: I18nConfig{
			Strategy:        "none",
			DefaultLanguage: "en",
		},

		Sitemap: SitemapConfig{Enabled: true},
		Feed:    FeedConfig{Enabled: true, MaxItems: 20},

		AssetManifest:  false,
		MaxSchemaDepth: 10,
		Cache:          CacheConfig{Compress: false},
		EnvPrefix:      "BENGAL_",
	}
}
