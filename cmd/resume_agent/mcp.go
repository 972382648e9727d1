package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/chat-resume/internal/mcpserver"
)

// version is set at build time
var version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the resume tools over MCP stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout exposing the generate_resume,
update_resume and validate_resume tools.`,
	RunE: runMCP,
}

var mcpOwner string

func init() {
	mcpCmd.Flags().StringVar(&mcpOwner, "owner", "", "Owner id recorded on stored documents")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
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

	return mcpserver.ServeStdio(mcpserver.Config{
		Generator: a.generator,
		Version:   version,
		OwnerID:   mcpOwner,
	})
}
