package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func TestUpdateKeepsValueOnCommit(t *testing.T) {
	v := New(map[string]string{"u1": "client"}, cloneMap)

	err := v.Update(context.Background(), func(m map[string]string) (map[string]string, error) {
		m["u1"] = "admin"
		return m, nil
	}, func(context.Context) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, "admin", v.Get()["u1"])
}

func TestUpdateRestoresSnapshotOnFailure(t *testing.T) {
	v := New(map[string]string{"u1": "client"}, cloneMap)
	boom := errors.New("backend unavailable")

	var seenDuringCommit string
	err := v.Update(context.Background(), func(m map[string]string) (map[string]string, error) {
		m["u1"] = "admin"
		return m, nil
	}, func(context.Context) error {
		seenDuringCommit = v.Get()["u1"]
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, "admin", seenDuringCommit, "change must be visible before the commit resolves")
	assert.Equal(t, "client", v.Get()["u1"])
}

func TestUpdateWithRevertPreservesConcurrentChanges(t *testing.T) {
	v := New(map[string]string{"u1": "client", "u2": "client"}, cloneMap)
	ctx := context.Background()

	err := v.UpdateWithRevert(ctx,
		func(m map[string]string) (map[string]string, error) {
			m["u1"] = "admin"
			return m, nil
		},
		func(current, snapshot map[string]string) map[string]string {
			current["u1"] = snapshot["u1"]
			return current
		},
		func(ctx context.Context) error {
			// another editor succeeds while this commit is in flight
			require.NoError(t, v.Update(ctx, func(m map[string]string) (map[string]string, error) {
				m["u2"] = "SEO"
				return m, nil
			}, func(context.Context) error { return nil }))
			return errors.New("rejected")
		},
	)

	require.Error(t, err)
	got := v.Get()
	assert.Equal(t, "client", got["u1"])
	assert.Equal(t, "SEO", got["u2"])
}

func TestMutateErrorsSkipCommit(t *testing.T) {
	v := New(map[string]string{"u1": "client"}, cloneMap)
	committed := false
	commit := func(context.Context) error { committed = true; return nil }

	err := v.Update(context.Background(), func(m map[string]string) (map[string]string, error) {
		return nil, ErrNoChange
	}, commit)
	require.NoError(t, err)

	invalid := errors.New("unknown user")
	err = v.Update(context.Background(), func(m map[string]string) (map[string]string, error) {
		return nil, invalid
	}, commit)
	require.ErrorIs(t, err, invalid)
	assert.False(t, committed)
	assert.Equal(t, "client", v.Get()["u1"])
}

func TestGetReturnsCopy(t *testing.T) {
	v := New(map[string]string{"u1": "client"}, cloneMap)
	got := v.Get()
	got["u1"] = "mutated"
	assert.Equal(t, "client", v.Get()["u1"])

	v.Replace(map[string]string{"u9": "admin"})
	assert.Equal(t, map[string]string{"u9": "admin"}, v.Get())
}
