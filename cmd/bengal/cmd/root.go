// Package cmd provides the CLI commands for bengal.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitUsage      = 2
	ExitBuild      = 3
)

// exitError tags an error with the exit code it should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// commandRan distinguishes usage errors (flag parsing, unknown
// subcommands) from failures inside a command's own run function.
var commandRan bool

// ExitCode maps err to the CLI exit-code contract: 0 success, 1
// validation failure, 2 usage error, 3 build error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if !commandRan {
		return ExitUsage
	}
	return ExitBuild
}

var (
	// cfgFile is the path to the config file specified via --config flag.
	cfgFile string

	// projectRoot is the project directory; defaults to the working directory.
	projectRoot string

	// verbose enables verbose output.
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bengal",
	Short: "An incremental static site generator",
	Long: `Bengal builds a content site from Markdown collections with a disk-backed
build cache, so unchanged pages are skipped on the next run.

Example usage:
  bengal build              # Rebuild only what changed since the last build
  bengal build --force      # Ignore the build cache and rebuild everything
  bengal serve               # Build, serve locally, and rebuild on file changes
  bengal validate            # Validate config and content without writing output
  bengal explain blog/a.md   # Show the cached build state for one page
  bengal explain --sources   # List each content file and its collection
  bengal cache inspect       # Show build cache statistics
  bengal cache clear         # Delete the build cache`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		commandRan = true
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: auto-discover)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "root", "r", "", "project root directory (default: working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func resolveRoot() (string, error) {
	if projectRoot != "" {
		return projectRoot, nil
	}
	return os.Getwd()
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
