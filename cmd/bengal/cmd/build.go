package cmd

import (
	"fmt"
	"time"

	"github.com/bengal-ssg/bengal/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	buildIncremental bool
	buildForce       bool
	buildWorkers     int
	buildSequential  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildIncremental, "incremental", true, "reuse the build cache and only rebuild what changed")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "ignore the build cache and rebuild everything")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "page-render worker pool size (0 uses build.workers from config; below 1 renders sequentially)")
	buildCmd.Flags().BoolVar(&buildSequential, "sequential", false, "disable parallel rendering")
}

func runBuild(_ *cobra.Command, _ []string) error {
	s, err := loadSite()
	if err != nil {
		return err
	}

	workers := buildWorkers
	if buildSequential {
		workers = 0
	} else if workers == 0 && s.cfg.Build.Workers > 0 {
		workers = s.cfg.Build.Workers
	}

	incremental := buildIncremental && !buildForce && s.cfg.Build.Incremental

	start := time.Now()
	p := pipeline.New(s.pipelineOptions(incremental, workers))
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if err := s.save(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	fmt.Printf("Built %d page(s) (%d rebuilt, %d skipped) in %s\n",
		len(result.Pages), result.PagesRebuilt, result.PagesSkipped, elapsed.Round(time.Millisecond))

	if verbose {
		printSummary(result)
	}
	return nil
}

func printSummary(result *pipeline.Result) {
	if len(result.Summary.ModifiedContent) > 0 {
		fmt.Printf("  content changed: %v\n", result.Summary.ModifiedContent)
	}
	if len(result.Summary.ModifiedTemplates) > 0 {
		fmt.Printf("  templates changed: %v\n", result.Summary.ModifiedTemplates)
	}
	if len(result.Summary.ModifiedAssets) > 0 {
		fmt.Printf("  assets changed: %v\n", result.Summary.ModifiedAssets)
	}
	for category, paths := range result.Summary.ExtraChanges {
		fmt.Printf("  %s cascade: %v\n", category, paths)
	}
}
