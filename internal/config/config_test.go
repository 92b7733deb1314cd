package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "MAX_UPLOAD_SIZE", "SETTINGS_PROVIDER",
		"SETTINGS_PATH", "LLM_PROVIDER", "LLM_MODEL", "ACCESS_CODE",
	} {
		// Setenv registers the restore; Unsetenv makes the key truly absent.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(53477376)},
		{"SettingsProvider", cfg.SettingsProvider, "file"},
		{"SettingsPath", cfg.SettingsPath, ".academic-translator.json"},
		{"LLMProvider", cfg.LLMProvider, "gemini"},
		{"LLMModel", cfg.LLMModel, "gemini-2.5-flash"},
		{"AccessCode", cfg.AccessCode, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SETTINGS_PROVIDER", "redis")
	t.Setenv("ACCESS_CODE", "open-sesame")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.SettingsProvider != "redis" {
		t.Errorf("expected settings provider 'redis', got %s", cfg.SettingsProvider)
	}
	if cfg.AccessCode != "open-sesame" {
		t.Errorf("expected access code from env, got %q", cfg.AccessCode)
	}
}

func TestFallbackCredential(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"gemini uses GEMINI_API_KEY", Config{LLMProvider: "gemini", GeminiAPIKey: "g", OpenAIKey: "o"}, "g"},
		{"openai uses OPENAI_API_KEY", Config{LLMProvider: "openai", GeminiAPIKey: "g", OpenAIKey: "o"}, "o"},
		{"unknown provider falls back to gemini key", Config{LLMProvider: "", GeminiAPIKey: "g"}, "g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.FallbackCredential(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
