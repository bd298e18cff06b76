package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cv-analyzer/internal/prompts"
	apperrors "cv-analyzer/pkg/errors"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicModel      = "claude-3-opus-20240229"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic calls the messages API.
type Anthropic struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewAnthropic(apiKey string, log *zap.Logger) *Anthropic {
	return &Anthropic{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
		log:     log,
	}
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *Anthropic) Analyze(ctx context.Context, cvText, promptTemplate, promptVersion string) (*Response, error) {
	start := time.Now()

	body, err := json.Marshal(anthropicRequest{
		Model:       anthropicModel,
		MaxTokens:   2000,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "user", Content: prompts.Render(promptTemplate, cvText)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code,
			"anthropic request failed", http.StatusBadGateway)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewError(apperrors.ErrDependency.Code,
			fmt.Sprintf("anthropic returned %d: %s", resp.StatusCode, truncate(raw, 256)),
			http.StatusBadGateway)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return nil, apperrors.NewError(apperrors.ErrDependency.Code,
			"anthropic response has no content", http.StatusBadGateway)
	}

	tokens := parsed.Usage.InputTokens + parsed.Usage.OutputTokens
	latency := float64(time.Since(start).Milliseconds())
	p.log.Info("anthropic analysis complete",
		zap.String("model", anthropicModel),
		zap.Int("tokens_used", tokens),
		zap.Float64("latency_ms", latency))

	return &Response{
		Content:    parsed.Content[0].Text,
		Model:      anthropicModel,
		TokensUsed: tokens,
		LatencyMS:  latency,
		Metadata: map[string]any{
			"prompt_version": promptVersion,
			"input_tokens":   parsed.Usage.InputTokens,
			"output_tokens":  parsed.Usage.OutputTokens,
		},
	}, nil
}

func (p *Anthropic) Name() string { return "anthropic" }
