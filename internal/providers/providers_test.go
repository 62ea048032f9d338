package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"GOOGLE_API_KEY", "GEMINI_API_KEY",
		"OLLAMA_URL", "OLLAMA_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func ollamaStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[]}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Stream {
			http.Error(w, "streaming not expected", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: RoleAssistant, Content: reply},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaChat(t *testing.T) {
	clearProviderEnv(t)
	srv := ollamaStub(t, "Hallo zurück")
	p := NewOllamaProvider(srv.URL, "qwen2.5:7b")

	got, err := p.Chat(context.Background(), "Du bist knapp.", []Message{
		{Role: RoleUser, Content: "Hallo"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "Hallo zurück" {
		t.Errorf("reply = %q", got)
	}
}

func TestOllamaChat_serverError(t *testing.T) {
	clearProviderEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaProvider(srv.URL, "fehlt")
	if _, err := p.Chat(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Error("expected error from HTTP 500")
	}
}

func TestOllamaPing(t *testing.T) {
	clearProviderEnv(t)
	srv := ollamaStub(t, "")
	if err := NewOllamaProvider(srv.URL, "").Ping(context.Background()); err != nil {
		t.Errorf("Ping against stub: %v", err)
	}
	srv.Close()
	if err := NewOllamaProvider(srv.URL, "").Ping(context.Background()); err == nil {
		t.Error("Ping against closed server must fail")
	}
}

func TestSelect_ollamaFallback(t *testing.T) {
	clearProviderEnv(t)
	srv := ollamaStub(t, "")

	p, err := Select(context.Background(), Options{OllamaURL: srv.URL})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if p.Name() != "Ollama" {
		t.Errorf("provider = %q, want Ollama", p.Name())
	}
}

func TestSelect_nothingConfigured(t *testing.T) {
	clearProviderEnv(t)
	srv := ollamaStub(t, "")
	srv.Close()

	_, err := Select(context.Background(), Options{OllamaURL: srv.URL})
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
}

func TestSelect_forcedModeFailsHard(t *testing.T) {
	clearProviderEnv(t)
	_, err := Select(context.Background(), Options{Mode: ModeClaude})
	if err == nil || errors.Is(err, ErrNoProvider) {
		t.Errorf("forced claude without key: err = %v", err)
	}
}

func TestAvailable(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	srv := ollamaStub(t, "")

	got := Available(context.Background(), srv.URL)
	want := map[string]bool{"Claude": true, "Ollama": true}
	if len(got) != 2 || !want[got[0]] || !want[got[1]] {
		t.Errorf("Available = %v", got)
	}
}

func TestAsClassifier(t *testing.T) {
	clearProviderEnv(t)
	srv := ollamaStub(t, "ERGEBNIS: Rechnungen|Telekom|2024|Rechnung.pdf")
	c := AsClassifier(NewOllamaProvider(srv.URL, ""))

	got, err := c.Classify(context.Background(), "Analysiere dieses Dokument")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != "ERGEBNIS: Rechnungen|Telekom|2024|Rechnung.pdf" {
		t.Errorf("reply = %q", got)
	}
}
