package providers

import (
	"context"
	"errors"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a conversation, provider-neutral.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-capable model backend. Chat sends the conversation with
// an optional system prompt and returns the assistant's text reply.
type Provider interface {
	Name() string
	Chat(ctx context.Context, system string, messages []Message) (string, error)
}

// ErrNoProvider is returned when no backend is configured: no API key in the
// environment and no reachable Ollama instance.
var ErrNoProvider = errors.New("kein KI-Provider verfügbar: API-Key setzen oder Ollama starten")
