package session

import "context"

// Scope is a key/value area the session store writes into.
// Store must apply all pairs together; Remove of missing keys is not an error.
type Scope interface {
	Load(ctx context.Context, keys ...string) (map[string]string, error)
	Store(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}
