package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider talks to Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider builds a Gemini-backed provider. The API key comes from
// GOOGLE_API_KEY or GEMINI_API_KEY, the model from GOOGLE_MODEL.
func NewGeminiProvider(ctx context.Context) (*GeminiProvider, error) {
	key := os.Getenv("GOOGLE_API_KEY")
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("gemini: GOOGLE_API_KEY fehlt")
	}
	model := os.Getenv("GOOGLE_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "Gemini" }

// Chat flattens the whole conversation into a single text block. Gemini
// insists on a user turn last; a flat transcript sidesteps that for
// arbitrary histories.
func (p *GeminiProvider) Chat(ctx context.Context, system string, messages []Message) (string, error) {
	var sb strings.Builder
	if system != "" {
		fmt.Fprintf(&sb, "System: %s\n", system)
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			fmt.Fprintf(&sb, "System: %s\n", msg.Content)
		case RoleAssistant:
			fmt.Fprintf(&sb, "Assistant: %s\n", msg.Content)
		default:
			fmt.Fprintf(&sb, "User: %s\n", msg.Content)
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(sb.String()), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 2048,
	})
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return resp.Text(), nil
}
