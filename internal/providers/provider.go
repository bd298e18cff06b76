package providers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cv-analyzer/config"
	apperrors "cv-analyzer/pkg/errors"
)

// Response carries the raw model output plus call metadata.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMS  float64
	Metadata   map[string]any
}

// Provider is one LLM backend capable of analyzing CV text.
type Provider interface {
	// Analyze sends the rendered prompt for the given CV text and returns
	// the raw model response.
	Analyze(ctx context.Context, cvText, promptTemplate, promptVersion string) (*Response, error)
	Name() string
}

// Registry resolves provider names to configured backends.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds the registry from configuration. Providers without an
// API key are skipped so a deployment can run with a subset configured.
func NewRegistry(cfg *config.ProviderConfig, log *zap.Logger) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	if cfg.OpenAIAPIKey != "" {
		r.register(NewOpenAI(cfg.OpenAIAPIKey, log))
	}
	if cfg.AnthropicAPIKey != "" {
		r.register(NewAnthropic(cfg.AnthropicAPIKey, log))
	}
	return r
}

// NewEmptyRegistry returns a registry with no providers. Tests populate it
// with Register.
func NewEmptyRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) register(p Provider) {
	r.providers[p.Name()] = p
}

// Register adds or replaces a provider. Used by tests to install fakes.
func (r *Registry) Register(p Provider) {
	r.register(p)
}

// Get resolves a provider by name. An unknown or unconfigured name is a
// configuration error, not a transient one.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, apperrors.NewError(apperrors.ErrConfiguration.Code,
			fmt.Sprintf("unknown provider: %s", name), http.StatusInternalServerError)
	}
	return p, nil
}

// Names lists the configured providers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
