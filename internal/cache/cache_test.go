package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "chart:none")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "chart:a", []byte(`{"total":220}`), time.Minute))
	got, err := c.Get(ctx, "chart:a")
	require.NoError(t, err)
	assert.Equal(t, `{"total":220}`, string(got))

	require.NoError(t, c.Delete(ctx, "chart:a"))
	_, err = c.Get(ctx, "chart:a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(2 * time.Second)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemorySetCopies(t *testing.T) {
	c := NewMemory()
	buf := []byte("abc")
	require.NoError(t, c.Set(context.Background(), "k", buf, 0))
	buf[0] = 'z'
	got, _ := c.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(got))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := NewRedis(ctx, RedisConfig{Addr: addr, Prefix: "examinfo-test:"})
	require.NoError(t, err)
	defer c.Close()
	exercise(t, c)
}
