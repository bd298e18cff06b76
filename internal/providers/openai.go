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
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4-turbo-preview"
)

// OpenAI calls the chat completions API.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewOpenAI(apiKey string, log *zap.Logger) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
		log:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *OpenAI) Analyze(ctx context.Context, cvText, promptTemplate, promptVersion string) (*Response, error) {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert CV analyzer."},
			{Role: "user", Content: prompts.Render(promptTemplate, cvText)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code,
			"openai request failed", http.StatusBadGateway)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewError(apperrors.ErrDependency.Code,
			fmt.Sprintf("openai returned %d: %s", resp.StatusCode, truncate(raw, 256)),
			http.StatusBadGateway)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, apperrors.NewError(apperrors.ErrDependency.Code,
			"openai response has no choices", http.StatusBadGateway)
	}

	latency := float64(time.Since(start).Milliseconds())
	p.log.Info("openai analysis complete",
		zap.String("model", openAIModel),
		zap.Int("tokens_used", parsed.Usage.TotalTokens),
		zap.Float64("latency_ms", latency))

	return &Response{
		Content:    parsed.Choices[0].Message.Content,
		Model:      openAIModel,
		TokensUsed: parsed.Usage.TotalTokens,
		LatencyMS:  latency,
		Metadata: map[string]any{
			"prompt_version": promptVersion,
			"finish_reason":  parsed.Choices[0].FinishReason,
		},
	}, nil
}

func (p *OpenAI) Name() string { return "openai" }

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
