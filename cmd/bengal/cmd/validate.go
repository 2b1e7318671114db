package cmd

import (
	"fmt"

	"github.com/bengal-ssg/bengal/internal/config"
	"github.com/bengal-ssg/bengal/internal/pipeline"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and content without writing output",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	errCount := 0
	for _, e := range config.Validate(cfg) {
		fmt.Printf("error: %v\n", e)
		errCount++
	}

	issues, err := pipeline.ValidateContent(cfg, nil)
	if err != nil {
		return fmt.Errorf("validating content: %w", err)
	}
	for _, issue := range issues {
		fmt.Printf("error: %s\n", issue)
		errCount++
	}

	if errCount == 0 {
		fmt.Println("configuration and content are valid")
		return nil
	}
	return &exitError{code: ExitValidation, err: fmt.Errorf("%d validation error(s)", errCount)}
}
