// Package access implements the passcode gate in front of the pages. It only
// hides the UI from casual use: the code and the flag live in plain settings.
package access

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"academic-translator/internal/store"
)

const grantedValue = "true"

var ErrInvalidCode = errors.New("invalid access code")

// Gate checks and records whether the user has entered the access code.
type Gate struct {
	settings store.Store
	code     string
}

// NewGate returns a gate for code. An empty code disables the gate.
func NewGate(settings store.Store, code string) *Gate {
	return &Gate{settings: settings, code: code}
}

// Enabled reports whether an access code is configured.
func (g *Gate) Enabled() bool { return g.code != "" }

// Granted reports whether access is open.
func (g *Gate) Granted(ctx context.Context) (bool, error) {
	if !g.Enabled() {
		return true, nil
	}
	val, ok, err := g.settings.Get(ctx, store.KeyAccess)
	if err != nil {
		return false, fmt.Errorf("read access flag: %w", err)
	}
	return ok && val == grantedValue, nil
}

// Unlock records access when code matches.
func (g *Gate) Unlock(ctx context.Context, code string) error {
	if !g.Enabled() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(g.code)) != 1 {
		return ErrInvalidCode
	}
	if err := g.settings.Set(ctx, store.KeyAccess, grantedValue); err != nil {
		return fmt.Errorf("save access flag: %w", err)
	}
	return nil
}

// Lock clears the access flag.
func (g *Gate) Lock(ctx context.Context) error {
	if err := g.settings.Delete(ctx, store.KeyAccess); err != nil {
		return fmt.Errorf("clear access flag: %w", err)
	}
	return nil
}
