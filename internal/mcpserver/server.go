// Package mcpserver exposes résumé generation, update and validation as Model Context
// Protocol tools, so a chat assistant can call them during a conversation.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jonathan/chat-resume/internal/pipeline"
	"github.com/jonathan/chat-resume/internal/schemas"
	"github.com/jonathan/chat-resume/internal/types"
)

// Tool names
const (
	ToolGenerate = "generate_resume"
	ToolUpdate   = "update_resume"
	ToolValidate = "validate_resume"
)

// Config holds the dependencies of the MCP server
type Config struct {
	Generator *pipeline.Generator
	Version   string
	// OwnerID is recorded on documents created through this server
	OwnerID string
}

// NewServer creates an MCP server with the résumé tools registered
func NewServer(cfg Config) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"chat-resume",
		ver,
		server.WithToolCapabilities(false),
	)

	registerGenerateTool(s, cfg.Generator, cfg.OwnerID)
	registerUpdateTool(s, cfg.Generator)
	registerValidateTool(s)
	return s
}

// ServeStdio serves the tools over stdin/stdout until the client disconnects
func ServeStdio(cfg Config) error {
	return server.ServeStdio(NewServer(cfg))
}

// generateResult is the JSON text returned by the generate tool
type generateResult struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Kind    string          `json:"kind"`
	Status  pipeline.Status `json:"status"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors,omitempty"`
	Content string          `json:"content"`
}

func registerGenerateTool(s *server.MCPServer, g *pipeline.Generator, ownerID string) {
	tool := mcp.NewTool(ToolGenerate,
		mcp.WithDescription("Create a resume from the conversation. Extracts personal information, work experience, education, skills, projects and certifications from the messages and returns the structured resume as JSON."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title for the resume document"),
		),
		mcp.WithString("messages",
			mcp.Required(),
			mcp.Description(`Conversation as a JSON array of {"role": "user"|"assistant", "parts": [{"type": "text", "text": "..."}]}`),
		),
		mcp.WithString("system_context",
			mcp.Description("Additional background text about the person"),
		),
		mcp.WithString("model",
			mcp.Description("Chat model id (default: chat-model)"),
		),
		mcp.WithBoolean("include_projects",
			mcp.Description("Include the projects section (default: true)"),
		),
		mcp.WithBoolean("include_certifications",
			mcp.Description("Include the certifications section (default: true)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		raw, err := req.RequireString("messages")
		if err != nil {
			return mcp.NewToolResultError("messages is required"), nil
		}
		var messages []types.Message
		if err := json.Unmarshal([]byte(raw), &messages); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("messages must be a JSON array: %v", err)), nil
		}

		includeProjects := req.GetBool("include_projects", true)
		includeCertifications := req.GetBool("include_certifications", true)

		out := g.Generate(ctx, pipeline.GenerateRequest{
			Title:         title,
			Messages:      messages,
			SystemContext: req.GetString("system_context", ""),
			Model:         req.GetString("model", ""),
			OwnerID:       ownerID,
			Sections: pipeline.Sections{
				IncludeProjects:       &includeProjects,
				IncludeCertifications: &includeCertifications,
			},
		})

		return jsonResult(generateResult{
			ID:      out.ID,
			Title:   out.Title,
			Kind:    out.Kind,
			Status:  out.Status,
			Message: out.Message,
			Errors:  out.Errors,
			Content: out.Content,
		})
	})
}

func registerUpdateTool(s *server.MCPServer, g *pipeline.Generator) {
	tool := mcp.NewTool(ToolUpdate,
		mcp.WithDescription("Apply an edit instruction to an existing resume. Pass the id of a stored resume, or its JSON content. On failure the previous version is kept."),
		mcp.WithString("instruction",
			mcp.Required(),
			mcp.Description("What to change, e.g. 'add Kubernetes to the skills'"),
		),
		mcp.WithString("id",
			mcp.Description("Id of a stored resume"),
		),
		mcp.WithString("content",
			mcp.Description("Current resume JSON, used when no id is given"),
		),
		mcp.WithString("model",
			mcp.Description("Chat model id (default: chat-model)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		instruction, err := req.RequireString("instruction")
		if err != nil {
			return mcp.NewToolResultError("instruction is required"), nil
		}
		update := pipeline.UpdateRequest{Instruction: instruction, Model: req.GetString("model", "")}

		if id := req.GetString("id", ""); id != "" {
			out, err := g.UpdateDocument(ctx, id, update)
			switch {
			case errors.Is(err, pipeline.ErrDocumentNotFound):
				return mcp.NewToolResultError(fmt.Sprintf("resume %s not found", id)), nil
			case err != nil:
				return mcp.NewToolResultError(fmt.Sprintf("update error: %v", err)), nil
			}
			return jsonResult(out)
		}

		content := req.GetString("content", "")
		if content == "" {
			return mcp.NewToolResultError("id or content is required"), nil
		}
		update.Content = content
		return jsonResult(g.Update(ctx, update))
	})
}

// validateResult is the JSON text returned by the validate tool
type validateResult struct {
	Valid      bool                `json:"valid"`
	Recovered  bool                `json:"recovered,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
	Violations types.Violations    `json:"violations,omitempty"`
	Record     *types.ResumeRecord `json:"record,omitempty"`
}

func registerValidateTool(s *server.MCPServer) {
	tool := mcp.NewTool(ToolValidate,
		mcp.WithDescription("Check resume JSON against the resume schema and report every violation by field path."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Resume JSON to check"),
		),
		mcp.WithBoolean("merge_defaults",
			mcp.Description("Retry with missing sections filled with empty defaults when the first check fails"),
		),
	)

	s.AddTool(tool, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		if !req.GetBool("merge_defaults", false) {
			result := schemas.Validate([]byte(content))
			return jsonResult(validateResult{
				Valid:      result.Success,
				Errors:     result.Errors,
				Violations: result.Violations,
				Record:     result.Data,
			})
		}

		var candidate types.Candidate
		if err := json.Unmarshal([]byte(content), &candidate); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("content must be a JSON object: %v", err)), nil
		}
		recovery := pipeline.ValidateWithRecovery(candidate)
		return jsonResult(validateResult{
			Valid:      recovery.Success,
			Recovered:  recovery.Recovered,
			Errors:     recovery.Errors,
			Violations: recovery.Violations,
			Record:     recovery.Record,
		})
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
