package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/chat-resume/internal/ingestion"
	"github.com/jonathan/chat-resume/internal/types"
)

// conversationFile is the on-disk form of a conversation: either a bare JSON array
// of messages or an object carrying a title and background context as well
type conversationFile struct {
	Title         string          `json:"title,omitempty"`
	SystemContext string          `json:"systemContext,omitempty"`
	Messages      []types.Message `json:"messages"`
}

// readConversation loads a conversation file. The title defaults to the file name.
func readConversation(path string) (conversationFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return conversationFile{}, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv conversationFile
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &conv.Messages)
	} else {
		err = json.Unmarshal(data, &conv)
	}
	if err != nil {
		return conversationFile{}, fmt.Errorf("failed to parse conversation file %s: %w", path, err)
	}

	if conv.Title == "" {
		conv.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return conv, nil
}

// loadBackground reads background context from a document path or a URL. The
// metadata is nil when source is empty.
func loadBackground(ctx context.Context, source string) (string, *ingestion.Metadata, error) {
	if source == "" {
		return "", nil, nil
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return ingestion.LoadURL(ctx, nil, source)
	}
	return ingestion.LoadContext(source)
}

// joinContext appends extra background to the conversation's own context
func joinContext(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// writeOutput writes data to path, creating its directory, or to stdout when path is empty
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
