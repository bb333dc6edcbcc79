package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrNoStore is returned when a Manager is used without a backing store.
var ErrNoStore = errors.New("session store is not initialized")

// Tokens is the persisted access/refresh pair representing an authenticated user.
type Tokens struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh,omitempty"`
}

// Empty reports whether neither token is present.
func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// Manager reads and writes the session tokens through a Store.
type Manager struct {
	Store Store
}

// NewManager is the constructor for the session manager.
func NewManager(store Store) *Manager {
	return &Manager{Store: store}
}

// Load returns whatever tokens are currently persisted. Missing entries come back empty.
func (m *Manager) Load(ctx context.Context) (Tokens, error) {
	access, err := m.get(ctx, AccessTokenKey)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := m.get(ctx, RefreshTokenKey)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// AccessToken returns the persisted access token, or "" when there is none.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.get(ctx, AccessTokenKey)
}

// RefreshToken returns the persisted refresh token, or "" when there is none.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	return m.get(ctx, RefreshTokenKey)
}

// Save persists a full token pair, as issued on login.
func (m *Manager) Save(ctx context.Context, tokens Tokens) error {
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return fmt.Errorf("cannot save an incomplete token pair")
	}
	if err := m.set(ctx, AccessTokenKey, tokens.AccessToken); err != nil {
		return err
	}
	if err := m.set(ctx, RefreshTokenKey, tokens.RefreshToken); err != nil {
		return err
	}
	log.Info().Str("access", Prefix(tokens.AccessToken)).Msg("Session tokens saved.")
	return nil
}

// SaveAccess replaces the persisted access token, leaving the refresh token untouched.
func (m *Manager) SaveAccess(ctx context.Context, access string) error {
	if access == "" {
		return fmt.Errorf("cannot save an empty access token")
	}
	return m.set(ctx, AccessTokenKey, access)
}

// Clear removes both tokens. Clearing an empty store is not an error.
func (m *Manager) Clear(ctx context.Context) error {
	if m.Store == nil {
		return ErrNoStore
	}
	if err := m.Store.Delete(ctx, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("failed to clear session tokens: %w", err)
	}
	log.Info().Msg("Session tokens cleared.")
	return nil
}

func (m *Manager) get(ctx context.Context, key string) (string, error) {
	if m.Store == nil {
		return "", ErrNoStore
	}
	v, ok, err := m.Store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

func (m *Manager) set(ctx context.Context, key, value string) error {
	if m.Store == nil {
		return ErrNoStore
	}
	if err := m.Store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Prefix shortens a token for log output so full credentials never reach the logs.
func Prefix(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}
