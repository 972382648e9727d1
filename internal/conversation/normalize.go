// Package conversation flattens chat messages into a plain-text transcript for prompting.
package conversation

import (
	"errors"
	"strings"

	"github.com/jonathan/chat-resume/internal/types"
)

// NonTextPlaceholder stands in for any message part that is not text
const NonTextPlaceholder = "[Non-text content]"

// ErrEmptyTranscript is returned when no user or assistant text survives normalization
var ErrEmptyTranscript = errors.New("no conversation content found to extract resume data from")

// Normalize reduces messages to a transcript of "ROLE: content" blocks separated by
// a blank line. Only user and assistant messages are kept. Role labels do not count
// as content: a conversation whose kept messages are all blank is empty.
func Normalize(messages []types.Message) (string, error) {
	blocks := make([]string, 0, len(messages))
	hasContent := false
	for _, msg := range messages {
		if msg.Role != types.RoleUser && msg.Role != types.RoleAssistant {
			continue
		}
		content := joinParts(msg.Parts)
		if strings.TrimSpace(content) != "" {
			hasContent = true
		}
		blocks = append(blocks, strings.ToUpper(string(msg.Role))+": "+content)
	}

	if !hasContent {
		return "", ErrEmptyTranscript
	}
	return strings.Join(blocks, "\n\n"), nil
}

// joinParts concatenates the parts of one message with single spaces
func joinParts(parts []types.Part) string {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Type == types.PartTypeText {
			texts = append(texts, part.Text)
			continue
		}
		texts = append(texts, NonTextPlaceholder)
	}
	return strings.Join(texts, " ")
}
