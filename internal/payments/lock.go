package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
)

// InFlightGuard rejects a second confirmation for an order while one is pending.
// Acquire returns ok=false when the order is already being confirmed.
type InFlightGuard interface {
	Acquire(ctx context.Context, orderID string) (release func(), ok bool, err error)
}

type redisLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfEquals(ctx context.Context, key, value string) (bool, error)
	PaymentLockKey(orderID string) string
}

// RedisGuard shares the in-flight marker across instances with SET NX.
type RedisGuard struct {
	client redisLocker
	ttl    time.Duration
}

// NewRedisGuard builds a guard whose markers expire after ttl, so a crashed instance
// cannot block an order forever.
func NewRedisGuard(client redisLocker, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, orderID string) (func(), bool, error) {
	key := g.client.PaymentLockKey(orderID)
	owner := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, owner, g.ttl)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire payment lock")
	}
	if !ok {
		return nil, false, nil
	}
	// an expired marker may already belong to another confirmation; only our own is removed
	release := func() {
		_, _ = g.client.DelIfEquals(context.WithoutCancel(ctx), key, owner)
	}
	return release, true, nil
}

// LocalGuard keeps in-flight markers in process memory.
type LocalGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{inFlight: map[string]struct{}{}}
}

func (g *LocalGuard) Acquire(_ context.Context, orderID string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[orderID]; busy {
		return nil, false, nil
	}
	g.inFlight[orderID] = struct{}{}
	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, orderID)
			g.mu.Unlock()
		})
	}
	return release, true, nil
}
