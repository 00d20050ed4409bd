package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewFromClient(rdb)
}

func TestClient_SetGetDelete(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_Expire(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(50 * time.Second)

	assert.True(t, c.Expire(ctx, "k", time.Minute))
	mr.FastForward(50 * time.Second)
	assert.True(t, mr.Exists("k"))

	mr.FastForward(20 * time.Second)
	assert.False(t, mr.Exists("k"))
	assert.False(t, c.Expire(ctx, "k", time.Minute))
}

func TestClient_JSON(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	require.NoError(t, c.SetJSON(ctx, "p", payload{Name: "Juan"}, time.Minute))

	var out payload
	assert.True(t, c.GetJSON(ctx, "p", &out))
	assert.Equal(t, "Juan", out.Name)

	assert.False(t, c.GetJSON(ctx, "missing", &out))
}

func TestClient_FailsSafeWhenRedisIsDown(t *testing.T) {
	mr, c := setupTestRedis(t)
	mr.Close()

	ctx := context.Background()
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNilClient(t *testing.T) {
	var c *Client
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, c.Expire(ctx, "k", time.Second))
	assert.Error(t, c.Ping(ctx))
}
