package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"cv-analyzer/config"
	apperrors "cv-analyzer/pkg/errors"
)

func TestRegistry_UnknownProvider(t *testing.T) {
	r := NewRegistry(&config.ProviderConfig{}, zap.NewNop())
	if _, err := r.Get("mistral"); !apperrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegistry_ConfiguredProviders(t *testing.T) {
	r := NewRegistry(&config.ProviderConfig{
		OpenAIAPIKey:    "sk-test",
		AnthropicAPIKey: "sk-ant-test",
	}, zap.NewNop())

	for _, name := range []string{"openai", "anthropic"} {
		p, err := r.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", name, err)
		}
		if p.Name() != name {
			t.Fatalf("provider name = %q, want %q", p.Name(), name)
		}
	}
}

func TestOpenAI_Analyze(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != openAIModel {
			t.Fatalf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"overall_score": 80}`}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"total_tokens": 321},
		})
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", zap.NewNop())
	p.baseURL = srv.URL

	resp, err := p.Analyze(context.Background(), "cv text", "Analyze:\n{cv_text}", "v1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if resp.Content != `{"overall_score": 80}` {
		t.Fatalf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 321 {
		t.Fatalf("tokens = %d", resp.TokensUsed)
	}
	if resp.Metadata["prompt_version"] != "v1" {
		t.Fatalf("metadata = %v", resp.Metadata)
	}
}

func TestOpenAI_AnalyzeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", zap.NewNop())
	p.baseURL = srv.URL

	if _, err := p.Analyze(context.Background(), "cv", "{cv_text}", "v1"); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestAnthropic_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "sk-ant-test" {
			t.Fatalf("api key header = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Fatal("missing anthropic-version header")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "analysis text"}},
			"usage":   map[string]int{"input_tokens": 100, "output_tokens": 50},
		})
	}))
	defer srv.Close()

	p := NewAnthropic("sk-ant-test", zap.NewNop())
	p.baseURL = srv.URL

	resp, err := p.Analyze(context.Background(), "cv text", "{cv_text}", "v2")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if resp.Content != "analysis text" {
		t.Fatalf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 150 {
		t.Fatalf("tokens = %d, want input+output", resp.TokensUsed)
	}
}
