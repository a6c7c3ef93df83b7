package storage

import (
	"context"
	"net/http"
	"time"

	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
)

// RedisKV is the subset of pkg/redis.Client used for session storage.
type RedisKV interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	CartKey(sessionID, field string) string
}

// RedisProvider stores session keys in Redis with a sliding TTL.
type RedisProvider struct {
	client RedisKV
	ttl    time.Duration
}

func NewRedisProvider(client RedisKV, ttl time.Duration) *RedisProvider {
	return &RedisProvider{client: client, ttl: ttl}
}

func (p *RedisProvider) Open(_ http.ResponseWriter, r *http.Request) (Store, error) {
	sessionID, err := requireSession(r.Context())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open redis storage")
	}
	return &RedisStore{client: p.client, sessionID: sessionID, ttl: p.ttl}, nil
}

func (p *RedisProvider) ServerSide() bool { return true }

type RedisStore struct {
	client    RedisKV
	sessionID string
	ttl       time.Duration
}

// Get reads a session key and slides its expiry, so an active shopper keeps the cart.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	redisKey := s.client.CartKey(s.sessionID, key)
	value, found, err := s.client.Lookup(ctx, redisKey)
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read session key from redis")
	}
	if found {
		// expiry refresh failing still leaves a readable value
		_ = s.client.Touch(ctx, redisKey, s.ttl)
	}
	return value, found, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.CartKey(s.sessionID, key), value, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write session key to redis")
	}
	return nil
}
