package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"cv-analyzer/internal/parser"
	"cv-analyzer/internal/prompts"
	"cv-analyzer/internal/providers"
)

// Result is the combined analysis document persisted for a job.
type Result struct {
	CVMetadata    CVMetadata     `json:"cv_metadata"`
	Analysis      map[string]any `json:"analysis"`
	Provider      ProviderInfo   `json:"provider"`
	PromptVersion string         `json:"prompt_version"`
	Degraded      bool           `json:"degraded,omitempty"`
}

type CVMetadata struct {
	Filename string            `json:"filename"`
	Sections map[string]string `json:"sections"`
}

type ProviderInfo struct {
	Name       string  `json:"name"`
	Model      string  `json:"model"`
	TokensUsed int     `json:"tokens_used"`
	LatencyMS  float64 `json:"latency_ms"`
}

// Analyzer runs the extract-prompt-analyze pipeline for one document.
type Analyzer struct {
	registry *providers.Registry
	log      *zap.Logger
}

func New(registry *providers.Registry, log *zap.Logger) *Analyzer {
	return &Analyzer{registry: registry, log: log}
}

// Analyze extracts text from the CV, renders the versioned prompt, calls the
// named provider and decodes the model output.
func (a *Analyzer) Analyze(ctx context.Context, cvData []byte, filename, providerName, promptVersion string) (*Result, error) {
	a.log.Info("parsing cv", zap.String("filename", filename))
	parsed, err := parser.Parse(cvData, filename)
	if err != nil {
		return nil, err
	}

	template, effectiveVersion := prompts.Get(promptVersion, a.log)

	provider, err := a.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	a.log.Info("analyzing with ai",
		zap.String("provider", providerName),
		zap.String("prompt_version", effectiveVersion))
	resp, err := provider.Analyze(ctx, parsed.NormalizedText, template, effectiveVersion)
	if err != nil {
		return nil, err
	}

	analysis, degraded := decodeAnalysis(resp.Content)
	if degraded {
		a.log.Warn("model output was not json, recording degraded result",
			zap.String("provider", providerName))
	}

	result := &Result{
		CVMetadata: CVMetadata{
			Filename: filename,
			Sections: parsed.Sections,
		},
		Analysis: analysis,
		Provider: ProviderInfo{
			Name:       provider.Name(),
			Model:      resp.Model,
			TokensUsed: resp.TokensUsed,
			LatencyMS:  resp.LatencyMS,
		},
		PromptVersion: effectiveVersion,
		Degraded:      degraded,
	}

	a.log.Info("analysis complete",
		zap.String("provider", providerName),
		zap.Int("tokens", resp.TokensUsed))
	return result, nil
}

// decodeAnalysis parses model output leniently. Direct JSON is preferred,
// then JSON inside a markdown code fence. Output that yields no valid JSON
// either way is wrapped into a minimal result rather than failing the job.
func decodeAnalysis(content string) (map[string]any, bool) {
	var analysis map[string]any
	if err := json.Unmarshal([]byte(content), &analysis); err == nil {
		return analysis, false
	}

	if fenced, ok := extractFenced(content); ok {
		if err := json.Unmarshal([]byte(fenced), &analysis); err == nil {
			return analysis, false
		}
	}

	return map[string]any{
		"summary":          content,
		"overall_score":    50,
		"scores":           []any{},
		"skills":           []any{},
		"gaps":             []any{},
		"ats_issues":       []any{},
		"improvement_plan": "See summary",
	}, true
}

func extractFenced(content string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(content, marker)
		if start < 0 {
			continue
		}
		start += len(marker)
		end := strings.Index(content[start:], "```")
		if end < 0 {
			return "", false
		}
		return strings.TrimSpace(content[start : start+end]), true
	}
	return "", false
}
