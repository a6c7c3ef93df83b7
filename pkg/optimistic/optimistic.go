// Package optimistic applies local changes before the remote write is confirmed
// and restores the previous value when the write fails.
package optimistic

import (
	"context"
	"errors"
	"sync"
)

// ErrNoChange is returned by a mutate function to skip the commit.
var ErrNoChange = errors.New("optimistic: no change")

// Value guards a displayed value of type T. Clone must return a deep copy so a
// snapshot is not aliased by later mutations.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	clone   func(T) T
}

// New returns a Value seeded with initial. A nil clone copies by assignment.
func New[T any](initial T, clone func(T) T) *Value[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Value[T]{current: clone(initial), clone: clone}
}

// Get returns a copy of the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clone(v.current)
}

// Replace overwrites the current value, e.g. after a fresh fetch.
func (v *Value[T]) Replace(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = v.clone(next)
}

// Update snapshots the current value, applies mutate, then runs commit.
// When commit fails the whole snapshot is restored and the commit error is returned.
func (v *Value[T]) Update(ctx context.Context, mutate func(T) (T, error), commit func(ctx context.Context) error) error {
	return v.UpdateWithRevert(ctx, mutate, func(_, snapshot T) T { return snapshot }, commit)
}

// UpdateWithRevert is Update with a caller-defined rollback. revert receives the
// value as it is when the commit fails and the snapshot taken before mutate, so
// concurrent updates that succeeded in the meantime can be preserved.
func (v *Value[T]) UpdateWithRevert(
	ctx context.Context,
	mutate func(T) (T, error),
	revert func(current, snapshot T) T,
	commit func(ctx context.Context) error,
) error {
	v.mu.Lock()
	snapshot := v.clone(v.current)
	next, err := mutate(v.clone(v.current))
	if err != nil {
		v.mu.Unlock()
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	v.current = next
	v.mu.Unlock()

	if err := commit(ctx); err != nil {
		v.mu.Lock()
		v.current = revert(v.clone(v.current), snapshot)
		v.mu.Unlock()
		return err
	}
	return nil
}
