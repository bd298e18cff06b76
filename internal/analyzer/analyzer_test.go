package analyzer

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"cv-analyzer/internal/providers"
	apperrors "cv-analyzer/pkg/errors"
)

type fakeProvider struct {
	name    string
	content string
	err     error
}

func (f *fakeProvider) Analyze(ctx context.Context, cvText, promptTemplate, promptVersion string) (*providers.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &providers.Response{
		Content:    f.content,
		Model:      "fake-model",
		TokensUsed: 42,
		LatencyMS:  12.5,
	}, nil
}

func (f *fakeProvider) Name() string { return f.name }

func TestAnalyze_DirectJSON(t *testing.T) {
	a, _ := buildAnalyzer(`{"overall_score": 85, "summary": "strong"}`)

	res, err := a.Analyze(context.Background(), []byte("Jane Doe\nGo engineer"), "cv.txt", "fake", "v1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Degraded {
		t.Fatal("valid json should not be degraded")
	}
	if res.Analysis["overall_score"].(float64) != 85 {
		t.Fatalf("overall_score = %v", res.Analysis["overall_score"])
	}
	if res.Provider.Name != "fake" || res.Provider.Model != "fake-model" {
		t.Fatalf("provider info = %+v", res.Provider)
	}
	if res.PromptVersion != "v1" {
		t.Fatalf("prompt version = %q", res.PromptVersion)
	}
}

func TestAnalyze_FencedJSON(t *testing.T) {
	a, _ := buildAnalyzer("Here is the analysis:\n```json\n{\"overall_score\": 70}\n```\nDone.")

	res, err := a.Analyze(context.Background(), []byte("cv"), "cv.txt", "fake", "v1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Degraded {
		t.Fatal("fenced json should not be degraded")
	}
	if res.Analysis["overall_score"].(float64) != 70 {
		t.Fatalf("overall_score = %v", res.Analysis["overall_score"])
	}
}

func TestAnalyze_BareFence(t *testing.T) {
	a, _ := buildAnalyzer("```\n{\"overall_score\": 60}\n```")

	res, err := a.Analyze(context.Background(), []byte("cv"), "cv.txt", "fake", "v1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Analysis["overall_score"].(float64) != 60 {
		t.Fatalf("overall_score = %v", res.Analysis["overall_score"])
	}
}

func TestAnalyze_PlainTextDegrades(t *testing.T) {
	a, _ := buildAnalyzer("The candidate looks solid overall.")

	res, err := a.Analyze(context.Background(), []byte("cv"), "cv.txt", "fake", "v1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !res.Degraded {
		t.Fatal("plain text output should be degraded")
	}
	if res.Analysis["summary"] != "The candidate looks solid overall." {
		t.Fatalf("summary = %v", res.Analysis["summary"])
	}
	if res.Analysis["overall_score"].(int) != 50 {
		t.Fatalf("overall_score = %v", res.Analysis["overall_score"])
	}
}

func TestAnalyze_FencedInvalidJSONDegrades(t *testing.T) {
	raw := "```json\nnot actually json\n```"
	a, _ := buildAnalyzer(raw)

	res, err := a.Analyze(context.Background(), []byte("cv"), "cv.txt", "fake", "v1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !res.Degraded {
		t.Fatal("unparseable fenced output should be degraded")
	}
	if res.Analysis["summary"] != raw {
		t.Fatalf("summary = %v", res.Analysis["summary"])
	}
}

func TestAnalyze_UnknownProvider(t *testing.T) {
	a, _ := buildAnalyzer("{}")

	_, err := a.Analyze(context.Background(), []byte("cv"), "cv.txt", "missing", "v1")
	if !apperrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAnalyze_UnknownPromptVersionFallsBack(t *testing.T) {
	a, _ := buildAnalyzer(`{"overall_score": 75}`)

	res, err := a.Analyze(context.Background(), []byte("cv"), "cv.txt", "fake", "v99")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.PromptVersion != "v1" {
		t.Fatalf("prompt version = %q, want fallback to v1", res.PromptVersion)
	}
}

func buildAnalyzer(content string) (*Analyzer, *fakeProvider) {
	fake := &fakeProvider{name: "fake", content: content}
	registry := providers.NewEmptyRegistry()
	registry.Register(fake)
	return New(registry, zap.NewNop()), fake
}
