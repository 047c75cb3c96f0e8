package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlocks_AddHasReset(t *testing.T) {
	mr, rdb := newRedis(t)
	u := NewUnlocks(rdb)
	ctx := context.Background()
	until := time.Now().Add(48 * time.Hour)

	ok, err := u.Has(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, u.Add(ctx, "u1", "l1", &until))
	require.NoError(t, u.Add(ctx, "u1", "l2", &until))

	ok, err = u.Has(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = u.Has(ctx, "u2", "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Greater(t, mr.TTL("unlock:u1"), 47*time.Hour)

	require.NoError(t, u.Reset(ctx, "u1"))
	ok, err = u.Has(ctx, "u1", "l2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnlocks_ExpireWithSubscription(t *testing.T) {
	mr, rdb := newRedis(t)
	u := NewUnlocks(rdb)
	ctx := context.Background()
	until := time.Now().Add(time.Hour)

	require.NoError(t, u.Add(ctx, "u1", "l1", &until))
	mr.FastForward(2 * time.Hour)

	ok, err := u.Has(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.False(t, ok)
}
