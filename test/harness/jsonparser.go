package harness

import (
	"encoding/json"
	"strings"
)

// MessageType represents the type of JSON message emitted by the
// headless UI of itch-bootstrap
type MessageType string

const (
	TypeMessage         MessageType = "message"
	TypeProgress        MessageType = "progress"
	TypeProgressMode    MessageType = "progress-mode"
	TypeCancelAvailable MessageType = "cancel-available"
	TypeHidden          MessageType = "hidden"
	TypeClosed          MessageType = "closed"
	TypePrompted        MessageType = "prompted"
	TypeInformed        MessageType = "informed"
	TypeFailed          MessageType = "failed"
)

// Message represents a parsed JSON message from itch-bootstrap stdout
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TextPayload is shared by message, informed and failed
type TextPayload struct {
	Message string `json:"message"`
}

// ProgressPayload contains the progress value, 0 to 100
type ProgressPayload struct {
	Value int `json:"value"`
}

// PromptedPayload contains the prompt and the answer given to it
type PromptedPayload struct {
	Message string `json:"message"`
	Answer  bool   `json:"answer"`
}

// CancelAvailablePayload tells whether the cancel button is enabled
type CancelAvailablePayload struct {
	Enabled bool `json:"enabled"`
}

// ParseMessage parses a single line of JSON output
func ParseMessage(line string) (Message, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "{") {
		return Message{}, false
	}

	var msg Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return Message{}, false
	}

	return msg, true
}

// GetTextPayload extracts the payload for message, informed and failed messages
func (m Message) GetTextPayload() (*TextPayload, bool) {
	switch m.Type {
	case TypeMessage, TypeInformed, TypeFailed:
	default:
		return nil, false
	}
	var p TextPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// GetProgressPayload extracts the payload for progress messages
func (m Message) GetProgressPayload() (*ProgressPayload, bool) {
	if m.Type != TypeProgress {
		return nil, false
	}
	var p ProgressPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// GetPromptedPayload extracts the payload for prompted messages
func (m Message) GetPromptedPayload() (*PromptedPayload, bool) {
	if m.Type != TypePrompted {
		return nil, false
	}
	var p PromptedPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// GetCancelAvailablePayload extracts the payload for cancel-available messages
func (m Message) GetCancelAvailablePayload() (*CancelAvailablePayload, bool) {
	if m.Type != TypeCancelAvailable {
		return nil, false
	}
	var p CancelAvailablePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// HasMessageType checks if the result contains a message of the given type
func (r *Result) HasMessageType(t MessageType) bool {
	for _, msg := range r.Messages {
		if msg.Type == t {
			return true
		}
	}
	return false
}

// GetFirstMessageOfType returns the first message of the given type
func (r *Result) GetFirstMessageOfType(t MessageType) *Message {
	for _, msg := range r.Messages {
		if msg.Type == t {
			return &msg
		}
	}
	return nil
}

// GetAllMessagesOfType returns all messages of the given type
func (r *Result) GetAllMessagesOfType(t MessageType) []Message {
	var result []Message
	for _, msg := range r.Messages {
		if msg.Type == t {
			result = append(result, msg)
		}
	}
	return result
}

// Texts returns the text of every status message, in order
func (r *Result) Texts() []string {
	var texts []string
	for _, msg := range r.GetAllMessagesOfType(TypeMessage) {
		if p, ok := msg.GetTextPayload(); ok {
			texts = append(texts, p.Message)
		}
	}
	return texts
}
