package auth

import "context"

// Keys under which the session tokens are persisted.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// Store defines the contract for any durable key-value storage that can hold the session tokens.
// Get reports ok=false when the key is absent. Delete must not fail on missing keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
