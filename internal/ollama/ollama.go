package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/versebench/versebench/internal/providers"
)

// Ollama is a provider for Ollama
type Ollama struct {
	client *api.Client
}

// New returns a new Ollama provider. An empty host falls back to OLLAMA_HOST
// and then to the local default.
func New(host string) (*Ollama, error) {
	if host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &Ollama{client: client}, nil
	}

	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &Ollama{client: api.NewClient(base, http.DefaultClient)}, nil
}

// Generate recites the prompt using Ollama
func (o *Ollama) Generate(ctx context.Context, config providers.Config) (string, error) {
	stream := false
	req := api.GenerateRequest{
		Model:  config.Model,
		System: config.System,
		Prompt: config.Prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": config.Temperature,
		},
	}

	var b strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := b.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return b.String(), nil
}
