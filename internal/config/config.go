package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read once at process start.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Upload limit for the whole multipart request. The PDF itself is capped at 50 MiB by the extractor.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"53477376"` // 51 MiB in bytes

	// Settings (credential + access flag)
	SettingsProvider string `env:"SETTINGS_PROVIDER" envDefault:"file"` // "file" or "redis"
	SettingsPath     string `env:"SETTINGS_PATH" envDefault:".academic-translator.json"`
	RedisAddr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword    string `env:"REDIS_PASSWORD"`

	// Generation
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"` // "gemini" or "openai"
	LLMModel     string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIKey    string `env:"OPENAI_API_KEY"`

	// Optional passcode for the access gate. Empty disables the gate.
	AccessCode string `env:"ACCESS_CODE"`
}

// FallbackCredential returns the environment-provided key for the configured provider.
func (c Config) FallbackCredential() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIKey
	}
	return c.GeminiAPIKey
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
