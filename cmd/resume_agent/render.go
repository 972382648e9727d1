package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/chat-resume/internal/db"
	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/objectstore"
	"github.com/jonathan/chat-resume/internal/pipeline"
	"github.com/jonathan/chat-resume/internal/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume as LaTeX, HTML or PDF",
	Long: `Renders a stored resume (--id) or a resume JSON file (--in). PDF output prints the
HTML rendering with a headless Chrome. With --upload the result is also written to
the configured S3 bucket.`,
	RunE: runRender,
}

var (
	renderID     string
	renderInput  string
	renderFormat string
	renderTitle  string
	renderOutput string
	renderUpload bool
)

func init() {
	renderCmd.Flags().StringVar(&renderID, "id", "", "Stored document id")
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to resume JSON file")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "tex", "Output format: tex, html or pdf")
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "", "Document title (default from the stored document or file name)")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output file")
	renderCmd.Flags().BoolVar(&renderUpload, "upload", false, "Upload the rendered file to object storage")

	renderCmd.MarkFlagsMutuallyExclusive("id", "in")
	renderCmd.MarkFlagsOneRequired("id", "in")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if renderOutput == "" && !renderUpload {
		return fmt.Errorf("--out or --upload is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	renderer, ok := renderers(cfg)[strings.ToLower(renderFormat)]
	if !ok {
		return fmt.Errorf("unsupported format %q", renderFormat)
	}

	var name, title, content string
	if renderID != "" {
		store, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w", err)
		}
		if store == nil {
			return fmt.Errorf("DATABASE_URL or SQLITE_PATH is required with --id")
		}
		defer store.Close()

		doc, err := store.GetDocument(ctx, renderID)
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		if doc == nil {
			return fmt.Errorf("resume %s not found", renderID)
		}
		name, title, content = doc.ID, doc.Title, doc.Content
	} else {
		data, err := os.ReadFile(renderInput)
		if err != nil {
			return fmt.Errorf("failed to read resume file: %w", err)
		}
		name = strings.TrimSuffix(filepath.Base(renderInput), filepath.Ext(renderInput))
		title, content = name, string(data)
	}
	if renderTitle != "" {
		title = renderTitle
	}

	record, err := recordFromContent(content)
	if err != nil {
		return err
	}

	data, err := renderer.Render(ctx, *record, title)
	if err != nil {
		return err
	}

	if renderOutput != "" {
		if err := writeOutput(renderOutput, data); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", renderOutput)
	}

	if renderUpload {
		store, err := objectstore.New(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to create object store: %w", err)
		}
		key, err := store.Put(ctx, objectstore.RenderedKey(name, renderer.Extension()), data, renderer.ContentType())
		if err != nil {
			return fmt.Errorf("failed to upload: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Uploaded: s3://%s/%s\n", store.Bucket(), key)
	}
	return nil
}

// recordFromContent decodes serialized resume content and validates it with defaults recovery
func recordFromContent(content string) (*types.ResumeRecord, error) {
	var candidate types.Candidate
	if err := json.Unmarshal([]byte(content), &candidate); err != nil {
		return nil, &extraction.MalformedOutputError{Raw: content, Cause: err}
	}

	recovery := pipeline.ValidateWithRecovery(candidate)
	if !recovery.Success {
		return nil, &extraction.ValidationFailedError{Errors: recovery.Errors}
	}
	return recovery.Record, nil
}
