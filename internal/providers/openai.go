package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIProvider talks to OpenAI's Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a ChatGPT-backed provider. The API key comes
// from OPENAI_API_KEY, the model may be overridden via OPENAI_MODEL.
func NewOpenAIProvider() (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY fehlt")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(option.WithAPIKey(key))
	return &OpenAIProvider{client: &client, model: model}, nil
}

func (p *OpenAIProvider) Name() string { return "ChatGPT" }

func (p *OpenAIProvider) Chat(ctx context.Context, system string, messages []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(msg.Content))
		default:
			msgs = append(msgs, openai.UserMessage(msg.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: leere Antwort")
	}
	return resp.Choices[0].Message.Content, nil
}
