package store

import (
	"context"
	"errors"
)

// Keys held in the settings store.
const (
	KeyCredential = "gemini_api_key"
	KeyAccess     = "academic_translator_access"
)

// ErrEmptyKey is returned when a caller passes an empty key.
var ErrEmptyKey = errors.New("store: empty key")

// Store is the small key-value store backing user settings. A missing key is
// reported as ok=false, never as an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
