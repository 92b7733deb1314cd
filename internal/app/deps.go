package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"academic-translator/internal/access"
	"academic-translator/internal/config"
	"academic-translator/internal/extractor"
	"academic-translator/internal/gateway"
	"academic-translator/internal/llm"
	"academic-translator/internal/logger"
	"academic-translator/internal/session"
	"academic-translator/internal/store"
)

// Deps bundles the runtime dependencies of the server.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Settings  store.Store
	Gateway   *gateway.Gateway
	Extractor *extractor.Extractor
	Access    *access.Gate
	Workspace *session.Workspace
}

// Build loads env, config, and shared components.
func Build(ctx context.Context) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	settings, err := buildSettings(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize settings store: %w", err)
	}
	gw, err := buildGateway(ctx, cfg, log, settings)
	if err != nil {
		_ = settings.Close()
		return Deps{}, fmt.Errorf("failed to initialize gateway: %w", err)
	}
	return Wire(cfg, log, settings, gw), nil
}

// Wire assembles Deps from already built components.
func Wire(cfg config.Config, log *slog.Logger, settings store.Store, gw *gateway.Gateway) Deps {
	return Deps{
		Config:    cfg,
		Log:       log,
		Settings:  settings,
		Gateway:   gw,
		Extractor: extractor.New(log),
		Access:    access.NewGate(settings, cfg.AccessCode),
		Workspace: session.NewWorkspace(),
	}
}

func buildSettings(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.SettingsProvider {
	case "file", "":
		st, err := store.NewFileStore(cfg.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings file: %w", err)
		}
		log.Info("using file settings store", "path", cfg.SettingsPath)
		return st, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SETTINGS_PROVIDER=redis")
		}
		st, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("using Redis settings store", "addr", cfg.RedisAddr)
		return st, nil
	default:
		return nil, fmt.Errorf("invalid SETTINGS_PROVIDER: %s (valid options: file, redis)", cfg.SettingsProvider)
	}
}

func buildGateway(ctx context.Context, cfg config.Config, log *slog.Logger, settings store.Store) (*gateway.Gateway, error) {
	factory, err := llm.NewFactory(cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		return nil, err
	}
	handle := gateway.NewHandle(log, settings, cfg.FallbackCredential(), factory)
	_, source := handle.Credential(ctx)
	log.Info("generation gateway ready", "provider", cfg.LLMProvider, "model", cfg.LLMModel, "credential", source)
	return gateway.New(log, handle, settings), nil
}
