package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/chat-resume/internal/observability"
	"github.com/jonathan/chat-resume/internal/pipeline"
	"github.com/jonathan/chat-resume/internal/schemas"
	"github.com/jonathan/chat-resume/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a resume JSON file against the resume schema",
	Long: `Reports every schema violation in a resume JSON file by field path. With --merge,
a failing resume is checked again with missing sections filled with empty defaults.`,
	RunE: runValidate,
}

var (
	validateInput string
	validateMerge bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to resume JSON file (required)")
	validateCmd.Flags().BoolVar(&validateMerge, "merge", false, "Retry with empty defaults for missing sections")

	_ = validateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	content, err := os.ReadFile(validateInput)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	return validateResume(content, validateMerge, os.Stdout)
}

// validateResume prints the violations of content and fails when there are any
func validateResume(content []byte, merge bool, w io.Writer) error {
	var violations types.Violations
	if merge {
		var candidate types.Candidate
		if err := json.Unmarshal(content, &candidate); err != nil {
			return fmt.Errorf("resume must be a JSON object: %w", err)
		}
		recovery := pipeline.ValidateWithRecovery(candidate)
		violations = recovery.Violations
		if recovery.Recovered {
			_, _ = fmt.Fprintln(w, "Missing sections were filled with empty defaults.")
		}
	} else {
		violations = schemas.Validate(content).Violations
	}

	observability.NewPrinter(w).PrintViolations(violations)
	if len(violations) > 0 {
		return fmt.Errorf("resume is invalid: %d violations", len(violations))
	}
	return nil
}
