package types

// Role identifies the author of a chat message
type Role string

// Roles recognised by the conversation normalizer. Any other value is dropped.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// PartTypeText is the only content part type whose text reaches the transcript
const PartTypeText = "text"

// Message is a single chat message as delivered by the chat transport
type Message struct {
	ID    string `json:"id,omitempty"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one content part of a message. Non-text parts (images, files, tool
// calls) carry their type only.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextMessage is a convenience constructor for a single-part text message
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Type: PartTypeText, Text: text}}}
}
