package cmd

import (
	"fmt"
	"os"

	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the on-disk build cache",
}

var cacheInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print build cache statistics",
	RunE:  runCacheInspect,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the build cache and stream cache",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInspectCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheInspect(_ *cobra.Command, _ []string) error {
	s, err := loadSite()
	if err != nil {
		return err
	}
	skipped, rebuilt := s.cache.Stats()
	fmt.Printf("config hash:        %s\n", s.cache.ConfigHash)
	fmt.Printf("last build:         %s\n", s.cache.GetLastBuild())
	fmt.Printf("fingerprints:       %d\n", len(s.cache.Fingerprints))
	fmt.Printf("rendered output:    %d\n", len(s.cache.RenderedOutput))
	fmt.Printf("pages rebuilt:      %d\n", rebuilt)
	fmt.Printf("pages skipped:      %d\n", skipped)
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	stateDir := bpath.StateDir(root)
	if err := os.RemoveAll(stateDir); err != nil {
		return fmt.Errorf("clearing cache directory %s: %w", stateDir, err)
	}
	fmt.Printf("cleared %s\n", stateDir)
	return nil
}
