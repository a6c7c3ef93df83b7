// Package storage persists small string values for one browser session.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/teslo-shop/storefront/pkg/config"
)

// Store is a key/value capability scoped to a single browser session.
type Store interface {
	// Get returns the stored value; found is false when the key was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Provider opens the Store that belongs to the request's browser session.
type Provider interface {
	Open(w http.ResponseWriter, r *http.Request) (Store, error)
	// ServerSide reports whether the provider keys data by the session cookie.
	ServerSide() bool
}

type sessionKey struct{}

// WithSessionID attaches the browser session id used by server-side providers.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFromContext returns the browser session id, if any.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey{}).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func requireSession(ctx context.Context) (string, error) {
	sessionID, ok := SessionIDFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("storage session id missing from request context")
	}
	return sessionID, nil
}

// Deps carries the optional backends a provider may need.
type Deps struct {
	Redis RedisKV
	DB    GormDB
}

// NewProvider builds the provider selected by STOREFRONT_STORAGE_DRIVER.
func NewProvider(cfg *config.Config, deps Deps) (Provider, error) {
	switch driver := cfg.Storage.Normalized(); driver {
	case config.StorageDriverCookie:
		return NewCookieProvider(cfg.Cookie), nil
	case config.StorageDriverMemory:
		return NewMemoryProvider(), nil
	case config.StorageDriverRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("storage driver %q requires a redis client", driver)
		}
		return NewRedisProvider(deps.Redis, cfg.Storage.SessionTTL), nil
	case config.StorageDriverSQL:
		if deps.DB == nil {
			return nil, fmt.Errorf("storage driver %q requires a database client", driver)
		}
		return NewSQLProvider(deps.DB), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
