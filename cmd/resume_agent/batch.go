package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/chat-resume/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate resumes for every conversation file in a directory",
	Long: `Runs the generate pipeline for each *.json conversation in --dir with bounded
concurrency. Each outcome is written to --out-dir as <name>.json and a summary.json
lists the status of every file. Unsuccessful generations do not stop the batch.`,
	RunE: runBatch,
}

var (
	batchDir         string
	batchOutDir      string
	batchModel       string
	batchOwner       string
	batchConcurrency int
)

func init() {
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "Directory of conversation JSON files (required)")
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "o", "", "Output directory (required)")
	batchCmd.Flags().StringVarP(&batchModel, "model", "m", "", "Chat model id")
	batchCmd.Flags().StringVar(&batchOwner, "owner", "", "Owner id recorded on stored documents")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "Maximum concurrent generations")

	_ = batchCmd.MarkFlagRequired("dir")
	_ = batchCmd.MarkFlagRequired("out-dir")
	rootCmd.AddCommand(batchCmd)
}

// batchEntry is one line of the batch summary
type batchEntry struct {
	File    string          `json:"file"`
	ID      string          `json:"id,omitempty"`
	Status  pipeline.Status `json:"status,omitempty"`
	Message string          `json:"message"`
	Saved   bool            `json:"saved"`
}

// batchSummary is written to summary.json
type batchSummary struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Entries   []batchEntry `json:"entries"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
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

	summary, err := generateBatch(ctx, a.generator, batchDir, batchOutDir, batchConcurrency, generateOptions{
		Model: batchModel,
		Owner: batchOwner,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Generated %d of %d resumes. Summary: %s\n",
		summary.Succeeded, summary.Total, filepath.Join(batchOutDir, "summary.json"))
	return nil
}

// generateBatch generates every conversation in dir, at most concurrency at a time
func generateBatch(ctx context.Context, gen *pipeline.Generator, dir, outDir string, concurrency int, opts generateOptions) (batchSummary, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return batchSummary{}, fmt.Errorf("failed to list conversations: %w", err)
	}
	sort.Strings(files)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return batchSummary{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	entries := make([]batchEntry, len(files))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			fileOpts := opts
			fileOpts.Input = file

			entry := batchEntry{File: filepath.Base(file)}
			out, err := generateResume(gCtx, gen, fileOpts)
			if err != nil {
				entry.Message = err.Error()
			} else {
				entry.ID, entry.Status, entry.Message, entry.Saved = out.ID, out.Status, out.Message, out.Saved

				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode outcome for %s: %w", entry.File, err)
				}
				name := strings.TrimSuffix(entry.File, filepath.Ext(entry.File)) + ".json"
				if err := writeOutput(filepath.Join(outDir, name), data); err != nil {
					return err
				}
			}

			mu.Lock()
			entries[i] = entry
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return batchSummary{}, err
	}

	summary := batchSummary{Total: len(entries), Entries: entries}
	for _, e := range entries {
		if e.Status == pipeline.StatusSuccess {
			summary.Succeeded++
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return batchSummary{}, fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := writeOutput(filepath.Join(outDir, "summary.json"), data); err != nil {
		return batchSummary{}, err
	}
	return summary, nil
}
