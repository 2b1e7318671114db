package config

import "fmt"

// Validate checks cfg for structurally invalid values and returns every
// problem found rather than stopping at the first.
func Validate(cfg *Config) []error {
	var errs []error

	if cfg.ContentDir == "" {
		errs = append(errs, fmt.Errorf("content_dir must not be empty"))
	}
	if cfg.OutputDir == "" {
		errs = append(errs, fmt.Errorf("output_dir must not be empty"))
	}
	if cfg.Build.Workers < 0 {
		errs = append(errs, fmt.Errorf("build.workers must be >= 0, got %d", cfg.Build.Workers))
	}
	if cfg.MaxSchemaDepth < 1 {
		errs = append(errs, fmt.Errorf("max_schema_depth must be >= 1, got %d", cfg.MaxSchemaDepth))
	}
	for name, col := range cfg.Collections {
		if col.Directory == "" && col.Glob == "" {
			errs = append(errs, fmt.Errorf("collection %q must declare a directory or glob", name))
		}
	}
	switch cfg.I18n.Strategy {
	case "", "none", "directory", "suffix":
	default:
		errs = append(errs, fmt.Errorf("i18n.strategy %q is not recognized", cfg.I18n.Strategy))
	}

	return errs
}
