package gateway

import (
	"context"
	"log/slog"
	"sync"

	"academic-translator/internal/llm"
	"academic-translator/internal/store"
)

// CredentialSource tells where the active credential came from.
type CredentialSource string

const (
	SourceStored      CredentialSource = "stored"
	SourceEnvironment CredentialSource = "environment"
	SourceNone        CredentialSource = "none"
)

// Handle owns the lazily built model client. The client is created on first
// use from the resolved credential and kept until Invalidate is called.
type Handle struct {
	log      *slog.Logger
	settings store.Store
	fallback string
	factory  llm.Factory

	mu     sync.Mutex
	client llm.Client
}

// NewHandle returns a Handle that resolves its credential from settings first
// and fallback second.
func NewHandle(log *slog.Logger, settings store.Store, fallback string, factory llm.Factory) *Handle {
	return &Handle{log: log, settings: settings, fallback: fallback, factory: factory}
}

// Credential resolves the credential: stored value first, then the fallback.
// A store read error is logged and treated as unset.
func (h *Handle) Credential(ctx context.Context) (string, CredentialSource) {
	if h.settings != nil {
		val, ok, err := h.settings.Get(ctx, store.KeyCredential)
		if err != nil {
			h.log.Warn("failed to read stored credential; using fallback", "err", err)
		} else if ok && val != "" {
			return val, SourceStored
		}
	}
	if h.fallback != "" {
		return h.fallback, SourceEnvironment
	}
	return "", SourceNone
}

// Client returns the cached client, building it if needed.
func (h *Handle) Client(ctx context.Context) (llm.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return h.client, nil
	}
	key, source := h.Credential(ctx)
	if key == "" {
		return nil, llm.ErrMissingAPIKey
	}
	client, err := h.factory(ctx, key)
	if err != nil {
		return nil, err
	}
	h.log.Debug("model client built", "credential_source", source)
	h.client = client
	return client, nil
}

// Invalidate drops the cached client; the next Client call rebuilds it.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()
}
