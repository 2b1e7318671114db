package config

import "testing"

func TestMergeOverridesNonEmptyFields(t *testing.T) {
	base := Default()
	override := &Config{Title: "My Site", Build: BuildConfig{Workers: 4}}

	merged := Merge(base, override)
	if merged.Title != "My Site" {
		t.Errorf("expected title override, got %q", merged.Title)
	}
	if merged.Build.Workers != 4 {
		t.Errorf("expected workers=4, got %d", merged.Build.Workers)
	}
	if merged.ContentDir != base.ContentDir {
		t.Errorf("expected content_dir to retain default, got %q", merged.ContentDir)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	t.Setenv("BENGAL_TITLE", "Env Title")
	t.Setenv("BENGAL_BUILD_WORKERS", "8")

	ApplyEnvOverrides(cfg)

	if cfg.Title != "Env Title" {
		t.Errorf("expected env override for title, got %q", cfg.Title)
	}
	if cfg.Build.Workers != 8 {
		t.Errorf("expected env override for workers, got %d", cfg.Build.Workers)
	}
}

func TestValidateRejectsEmptyContentDir(t *testing.T) {
	cfg := Default()
	cfg.ContentDir = ""
	errs := Validate(cfg)
	if len(errs) == 0 {
		t.Fatal("expected validation error for empty content_dir")
	}
}

func TestValidateRejectsUnknownI18nStrategy(t *testing.T) {
	cfg := Default()
	cfg.I18n.Strategy = "bogus"
	errs := Validate(cfg)
	if len(errs) == 0 {
		t.Fatal("expected validation error for unknown i18n strategy")
	}
}

func TestParseTOMLRoundTrip(t *testing.T) {
	data := []byte(`
title = "Test Site"
content_dir = "src"

[build]
workers = 2
`)
	cfg, err := ParseTOML(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cfg.Title != "Test Site" || cfg.ContentDir != "src" || cfg.Build.Workers != 2 {
		t.Errorf("unexpected parsed config: %+v", cfg)
	}
}
