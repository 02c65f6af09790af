package providers

import (
	"context"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	System      string
	Prompt      string

	// Book and Chapter identify the chapter being recited. Remote providers
	// only need the prompt; replay providers key their responses on them.
	Book    string
	Chapter int
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Generate(ctx context.Context, config Config) (string, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, config Config) (string, error)

func (f ProviderFunc) Generate(ctx context.Context, config Config) (string, error) {
	return f(ctx, config)
}
