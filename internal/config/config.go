package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/versebench/versebench/internal/eval/metrics"
)

// Config holds all configuration values.
type Config struct {
	// Provider selection
	Provider string
	Model    string

	// Provider endpoints and credentials
	OllamaHost    string
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiKey     string

	// Inputs
	ProfilesPath string
	CorpusPath   string
	CacheDir     string
	CorpusToken  string

	// Run store; empty keeps runs in memory
	DBPath string

	// Scoring
	Thresholds metrics.Thresholds

	// Dashboard
	LatestOnly bool
	Port       string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	provider := getEnv("VERSEBENCH_PROVIDER", "ollama")
	return Config{
		Provider: provider,
		Model:    getEnv("VERSEBENCH_MODEL", DefaultModel(provider)),

		OllamaHost:    getEnv("OLLAMA_HOST", ""),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		GeminiKey:     getEnv("GEMINI_API_KEY", ""),

		ProfilesPath: getEnv("VERSEBENCH_PROFILES", ""),
		CorpusPath:   getEnv("VERSEBENCH_CORPUS", ""),
		CacheDir:     getEnv("VERSEBENCH_CACHE_DIR", ""),
		CorpusToken:  getEnv("HF_TOKEN", ""),

		DBPath: getEnv("VERSEBENCH_DB", ""),

		Thresholds: metrics.Thresholds{
			Pass: getFloat("VERSEBENCH_PASS_THRESHOLD", metrics.DefaultThresholds.Pass),
			Warn: getFloat("VERSEBENCH_WARN_THRESHOLD", metrics.DefaultThresholds.Warn),
		},

		LatestOnly: getEnv("VERSEBENCH_LATEST_ONLY", "false") == "true",
		Port:       getEnv("VERSEBENCH_PORT", "8888"),

		LogFile:  getEnv("VERSEBENCH_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("VERSEBENCH_LOG_LEVEL", "INFO")),
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return getEnv("OPENAI_MODEL", "gpt-4o")
	case "gemini":
		return getEnv("GEMINI_MODEL", "gemini-1.5-pro")
	case "ollama":
		return getEnv("OLLAMA_MODEL", "llama3.1:8b")
	default:
		return ""
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		slog.Warn("Ignoring invalid number in environment", "key", key, "value", val)
		return defaultVal
	}
	return f
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
