package cmd

import (
	"fmt"

	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/pipeline"
	"github.com/spf13/cobra"
)

var explainSources bool

var explainCmd = &cobra.Command{
	Use:   "explain [path]",
	Short: "Explain why a page would rebuild, or list collection ownership",
	Long: `Without arguments, prints the cached build state. With a source path,
reports that page's fingerprint, dependency, and tag state so you can see
what would make the next incremental build pick it up. With --sources,
lists every discovered content file and the collection that owns it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().BoolVar(&explainSources, "sources", false, "list each content file and its owning collection")
}

func runExplain(_ *cobra.Command, args []string) error {
	s, err := loadSite()
	if err != nil {
		return err
	}

	if explainSources {
		entries, err := pipeline.ListSources(s.cfg)
		if err != nil {
			return err
		}
		for _, e := range entries {
			owner := e.Collection
			if owner == "" {
				owner = "(none)"
			}
			fmt.Printf("%-16s %s\n", owner, e.Path)
		}
		return nil
	}

	if len(args) == 0 {
		fmt.Printf("config hash:  %s\n", s.cache.ConfigHash)
		fmt.Printf("last build:   %s\n", s.cache.GetLastBuild())
		fmt.Printf("fingerprints: %d\n", len(s.cache.Fingerprints))
		fmt.Printf("dep edges:    %d\n", s.cache.Graph.Size())
		return nil
	}

	path := bpath.ToPosix(args[0])
	explainPage(s, path)
	return nil
}

// explainPage prints everything the change detector would consider for
// path on the next incremental run.
func explainPage(s *site, path string) {
	fp, ok := s.cache.Fingerprints[path]
	if !ok {
		fmt.Printf("%s: no fingerprint recorded — it will rebuild (new or never built)\n", path)
	} else {
		fmt.Printf("%s\n", path)
		fmt.Printf("  fingerprint: size=%d hash=%s\n", fp.Size, fp.Hash)
		if s.cache.IsChanged(path) {
			fmt.Printf("  changed:     yes — content differs from the cached hash\n")
		} else {
			fmt.Printf("  changed:     no\n")
		}
	}

	if _, ok := s.cache.GetRenderedOutput(path); ok {
		fmt.Printf("  rendered:    cached (reusable if no dependency changed)\n")
	} else {
		fmt.Printf("  rendered:    not cached — it will render\n")
	}

	if deps := s.cache.Graph.GetDependencies(path); len(deps) > 0 {
		fmt.Printf("  depends on:\n")
		for _, d := range deps {
			fmt.Printf("    %s\n", d)
		}
	}
	if dependents := s.cache.Graph.GetDirectDependents(path); len(dependents) > 0 {
		fmt.Printf("  a change here rebuilds:\n")
		for _, d := range dependents {
			fmt.Printf("    %s\n", d)
		}
	}
	if tags := s.cache.GetPreviousTags(path); len(tags) > 0 {
		fmt.Printf("  tags:        %v\n", tags)
	}
	if navHash := s.cache.GetNavMetadataHash(path); navHash != "" {
		fmt.Printf("  nav hash:    %s\n", navHash)
	}
}
