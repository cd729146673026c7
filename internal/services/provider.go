package services

import (
	"context"
	"fmt"

	"chat-gateway/internal/agent"
	"chat-gateway/internal/config"
)

// Provider constructs model handles on one model-hosting API.
type Provider interface {
	Name() string
	NewModel(ctx context.Context, modelID string) (agent.Model, error)
}

// NewProvider builds the provider selected by cfg.ModelProvider, wrapped in
// concurrency slots when cfg.ModelConcurrentReqs is positive. The returned
// close func releases client resources.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, func(), error) {
	var (
		p       Provider
		closeFn = func() {}
	)

	switch cfg.ModelProvider {
	case config.ProviderBedrock:
		bp, err := NewBedrockProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		p = bp
	case config.ProviderGemini:
		gp, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		p = gp
		closeFn = gp.Close
	case config.ProviderFake:
		fp, err := NewFakeProvider(cfg.FakeScript)
		if err != nil {
			return nil, nil, err
		}
		p = fp
	default:
		return nil, nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}

	return WithConcurrencyLimit(p, cfg.ModelConcurrentReqs), closeFn, nil
}
