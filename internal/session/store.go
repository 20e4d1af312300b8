// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"time"
)

const (
	KeyUser      = "user"
	KeyAuthToken = "authToken"
	KeyFlash     = "flash"
)

// Store keeps the key/value pairs of one browser session. IDs passed in are
// already hashed; a missing or expired session reads as an empty map.
type Store interface {
	Get(ctx context.Context, id string) (map[string]string, error)
	Set(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string, keys ...string) error
	Destroy(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Kind() string
}

// Sweeper is implemented by stores that must purge expired rows themselves.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}
