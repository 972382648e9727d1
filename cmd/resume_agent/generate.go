package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/chat-resume/internal/config"
	"github.com/jonathan/chat-resume/internal/observability"
	"github.com/jonathan/chat-resume/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a resume from a conversation file",
	Long: `Extracts a structured resume from a conversation JSON file, validates and enhances
it, and writes the resume JSON. Background context can be supplied as a document
(txt, md, pdf, docx, html) or a URL.`,
	RunE: runGenerate,
}

var (
	generateInput            string
	generateTitle            string
	generateContext          string
	generateModel            string
	generateOwner            string
	generateOutput           string
	generateNoProjects       bool
	generateNoCertifications bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateInput, "conversation", "i", "", "Path to conversation JSON file (required)")
	generateCmd.Flags().StringVarP(&generateTitle, "title", "t", "", "Resume title (default from the conversation file)")
	generateCmd.Flags().StringVar(&generateContext, "context", "", "Background document path or URL")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "Chat model id (chat-model or chat-model-reasoning)")
	generateCmd.Flags().StringVar(&generateOwner, "owner", "", "Owner id recorded on the stored document")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	generateCmd.Flags().BoolVar(&generateNoProjects, "no-projects", false, "Leave the projects section empty")
	generateCmd.Flags().BoolVar(&generateNoCertifications, "no-certifications", false, "Leave the certifications section empty")

	_ = generateCmd.MarkFlagRequired("conversation")
	rootCmd.AddCommand(generateCmd)
}

// generateOptions are the inputs of one generate run
type generateOptions struct {
	Input            string
	Title            string
	Context          string
	Model            string
	Owner            string
	NoProjects       bool
	NoCertifications bool
	// Log receives progress notes; nil discards them
	Log io.Writer
}

func runGenerate(cmd *cobra.Command, _ []string) error {
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

	out, err := generateResume(ctx, a.generator, generateOptions{
		Input:            generateInput,
		Title:            generateTitle,
		Context:          generateContext,
		Model:            generateModel,
		Owner:            generateOwner,
		NoProjects:       generateNoProjects,
		NoCertifications: generateNoCertifications,
		Log:              verboseLog(cfg),
	})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintRecord(&out.Record)
	}
	if out.Status != pipeline.StatusSuccess {
		return outcomeError(out)
	}

	if err := writeOutput(generateOutput, []byte(out.Content)); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, out.Message)
	return nil
}

// generateResume runs one generation from a conversation file
func generateResume(ctx context.Context, gen *pipeline.Generator, opts generateOptions) (pipeline.Outcome, error) {
	conv, err := readConversation(opts.Input)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	background, meta, err := loadBackground(ctx, opts.Context)
	if err != nil {
		return pipeline.Outcome{}, fmt.Errorf("failed to load background context: %w", err)
	}
	if meta != nil && opts.Log != nil {
		_, _ = fmt.Fprintf(opts.Log, "Background: %s\n", meta.Summary())
	}

	title := opts.Title
	if title == "" {
		title = conv.Title
	}

	req := pipeline.GenerateRequest{
		Title:         title,
		Messages:      conv.Messages,
		SystemContext: joinContext(conv.SystemContext, background),
		Model:         opts.Model,
		OwnerID:       opts.Owner,
	}
	if opts.NoProjects {
		req.Sections.IncludeProjects = new(bool)
	}
	if opts.NoCertifications {
		req.Sections.IncludeCertifications = new(bool)
	}

	return gen.Generate(ctx, req), nil
}

// verboseLog returns stderr in verbose mode
func verboseLog(cfg config.Config) io.Writer {
	if cfg.Verbose {
		return os.Stderr
	}
	return nil
}

// outcomeError describes an unsuccessful generation
func outcomeError(out pipeline.Outcome) error {
	return fmt.Errorf("resume generation %s (%s): %s", out.Status, out.ErrorKind, strings.Join(out.Errors, "; "))
}
