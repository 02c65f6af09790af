package benchmark

import (
	"fmt"

	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/gemini"
	"github.com/versebench/versebench/internal/ollama"
	"github.com/versebench/versebench/internal/openai"
	"github.com/versebench/versebench/internal/providers"
)

// NewProvider builds the named provider from configuration. "static" replays
// the YAML responses file at responsesPath.
func NewProvider(name string, cfg config.Config, responsesPath string) (providers.Provider, error) {
	switch name {
	case "ollama":
		return ollama.New(cfg.OllamaHost)
	case "openai":
		return openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	case "gemini":
		return gemini.New(cfg.GeminiKey)
	case "static":
		if responsesPath == "" {
			return nil, fmt.Errorf("static provider requires a responses file")
		}
		return providers.LoadStatic(responsesPath)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
