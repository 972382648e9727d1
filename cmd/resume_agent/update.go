package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/chat-resume/internal/pipeline"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Apply an edit instruction to a resume",
	Long: `Applies a free-form edit instruction to a stored resume (--id) or a resume JSON
file (--in). A rejected edit leaves the resume unchanged.`,
	RunE: runUpdate,
}

var (
	updateID          string
	updateInput       string
	updateInstruction string
	updateModel       string
	updateOutput      string
)

func init() {
	updateCmd.Flags().StringVar(&updateID, "id", "", "Stored document id")
	updateCmd.Flags().StringVarP(&updateInput, "in", "i", "", "Path to resume JSON file")
	updateCmd.Flags().StringVar(&updateInstruction, "instruction", "", "Edit instruction (required)")
	updateCmd.Flags().StringVarP(&updateModel, "model", "m", "", "Chat model id")
	updateCmd.Flags().StringVarP(&updateOutput, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = updateCmd.MarkFlagRequired("instruction")
	updateCmd.MarkFlagsMutuallyExclusive("id", "in")
	updateCmd.MarkFlagsOneRequired("id", "in")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := updateResume(ctx, a.generator, updateID, updateInput, pipeline.UpdateRequest{
		Instruction: updateInstruction,
		Model:       updateModel,
	})
	if err != nil {
		return err
	}
	if !out.Updated {
		return fmt.Errorf("%s", out.Message)
	}

	if err := writeOutput(updateOutput, []byte(out.Content)); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, out.Message)
	return nil
}

// updateResume edits the stored document id, or the file at path when id is empty
func updateResume(ctx context.Context, gen *pipeline.Generator, id, path string, req pipeline.UpdateRequest) (pipeline.UpdateOutcome, error) {
	if id != "" {
		out, err := gen.UpdateDocument(ctx, id, req)
		if err != nil {
			return out, fmt.Errorf("failed to update resume %s: %w", id, err)
		}
		return out, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return pipeline.UpdateOutcome{}, fmt.Errorf("failed to read resume file: %w", err)
	}
	req.Content = string(content)
	return gen.Update(ctx, req), nil
}
