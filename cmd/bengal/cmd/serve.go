package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bengal-ssg/bengal/internal/pipeline"
	"github.com/bengal-ssg/bengal/internal/rebuild"
	"github.com/bengal-ssg/bengal/internal/watch"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveHost    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build and serve locally, rebuilding on file changes",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "port to serve on")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "host to serve on")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "serve without watching for file changes")
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\ninterrupt received, shutting down...")
		cancel()
	}()

	s, err := loadSite()
	if err != nil {
		return err
	}

	if err := doRebuild(s, false); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	server := &http.Server{
		Addr:              addr,
		Handler:           http.FileServer(http.Dir(s.cfg.OutputDir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("Serving at http://%s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if !serveNoWatch {
		if err := runWatchLoop(ctx, s); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	fmt.Println("server stopped")
	return nil
}

func runWatchLoop(ctx context.Context, s *site) error {
	roots := []string{s.cfg.ContentDir, s.cfg.TemplatesDir, s.cfg.AssetsDir}
	w, err := watch.New(roots, watch.Options{
		IgnoreDirs: []string{s.cfg.OutputDir},
		ConfigPath: cfgFile,
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	go func() {
		<-ctx.Done()
		w.Close()
	}()

	go w.Run(ctx)

	preds := classifierPredicates(s)

	go func() {
		for batch := range w.Events {
			changed := make([]string, 0, len(batch.Changed))
			for p := range batch.Changed {
				changed = append(changed, p)
			}

			decision := rebuild.Classify(changed, batch.EventTypes, preds)
			full := batch.ConfigChanged || decision.FullRebuild
			if full {
				logf("full rebuild triggered (%s)", decision.Reason)
			} else {
				logf("incremental rebuild: %d changed path(s)", len(changed))
			}
			if err := doRebuild(s, !full); err != nil {
				fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
			}
		}
	}()

	go func() {
		for err := range w.Errors {
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		}
	}()

	return nil
}

func classifierPredicates(s *site) rebuild.Predicates {
	templatesDir := s.cfg.TemplatesDir
	shared := make(map[string]bool, len(s.cfg.SharedDirs))
	for _, dir := range s.cfg.SharedDirs {
		shared[dir] = true
	}
	aliasTargets := make(map[string]bool, len(s.cfg.VersionAliases))
	for _, target := range s.cfg.VersionAliases {
		aliasTargets[target] = true
	}

	return rebuild.Predicates{
		IsTemplate: func(path string) bool {
			return templatesDir != "" && strings.Contains(path, templatesDir)
		},
		IsSharedContent: func(path string) bool {
			for dir := range shared {
				if strings.Contains(path, dir) {
					return true
				}
			}
			return false
		},
		IsVersionConfig: func(path string) bool {
			for target := range aliasTargets {
				if strings.Contains(path, target) {
					return true
				}
			}
			return false
		},
	}
}

func doRebuild(s *site, incremental bool) error {
	p := pipeline.New(s.pipelineOptions(incremental, 0))
	result, err := p.Run()
	if err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Printf("built %d page(s) (%d rebuilt, %d skipped)\n", len(result.Pages), result.PagesRebuilt, result.PagesSkipped)
	return nil
}
