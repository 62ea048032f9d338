package providers

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/classify"
)

// Mode names for forcing a specific backend. "auto" walks the preference
// order Claude, ChatGPT, Gemini, Ollama and takes the first configured one.
const (
	ModeAuto   = "auto"
	ModeClaude = "claude"
	ModeOpenAI = "openai"
	ModeGemini = "gemini"
	ModeOllama = "ollama"
)

// Options steers provider selection.
type Options struct {
	Mode      string
	OllamaURL string
	Logger    *zap.Logger
}

// Select picks a provider. A concrete mode is binding and its setup error is
// returned as-is; in auto mode a failing candidate is skipped and the next
// one tried, ending with an Ollama reachability probe.
func Select(ctx context.Context, opts Options) (Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}

	if mode == ModeClaude || (mode == ModeAuto && os.Getenv("ANTHROPIC_API_KEY") != "") {
		p, err := NewAnthropicProvider()
		if err == nil {
			logger.Info("KI-Provider gewählt", zap.String("provider", p.Name()))
			return p, nil
		}
		if mode == ModeClaude {
			return nil, err
		}
		logger.Warn("Claude nicht verfügbar", zap.Error(err))
	}

	if mode == ModeOpenAI || (mode == ModeAuto && os.Getenv("OPENAI_API_KEY") != "") {
		p, err := NewOpenAIProvider()
		if err == nil {
			logger.Info("KI-Provider gewählt", zap.String("provider", p.Name()))
			return p, nil
		}
		if mode == ModeOpenAI {
			return nil, err
		}
		logger.Warn("ChatGPT nicht verfügbar", zap.Error(err))
	}

	if mode == ModeGemini || (mode == ModeAuto && (os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "")) {
		p, err := NewGeminiProvider(ctx)
		if err == nil {
			logger.Info("KI-Provider gewählt", zap.String("provider", p.Name()))
			return p, nil
		}
		if mode == ModeGemini {
			return nil, err
		}
		logger.Warn("Gemini nicht verfügbar", zap.Error(err))
	}

	p := NewOllamaProvider(opts.OllamaURL, "")
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		if mode == ModeOllama {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNoProvider, err)
	}
	logger.Info("KI-Provider gewählt", zap.String("provider", p.Name()))
	return p, nil
}

// Available lists the providers the current environment could serve. Ollama
// is probed with a short timeout.
func Available(ctx context.Context, ollamaURL string) []string {
	var out []string
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		out = append(out, "Claude")
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		out = append(out, "ChatGPT")
	}
	if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "" {
		out = append(out, "Gemini")
	}
	p := NewOllamaProvider(ollamaURL, "")
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if p.Ping(pingCtx) == nil {
		out = append(out, "Ollama")
	}
	return out
}

// AsClassifier adapts a chat provider to the single-prompt classifier
// contract used by the archival pipeline.
func AsClassifier(p Provider) classify.Classifier {
	return classify.ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return p.Chat(ctx, "", []Message{{Role: RoleUser, Content: prompt}})
	})
}
