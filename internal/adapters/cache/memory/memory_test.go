package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehive/ai-orchestrator/internal/core/ports"
)

func TestSetGet(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute))

	var got map[string]string
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "b", got["a"])
}

func TestGet_MissReturnsSentinel(t *testing.T) {
	c := New()
	var got string
	err := c.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestGet_ExpiredReturnsSentinel(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)

	var got string
	err := c.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got string
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ports.ErrCacheMiss)
}
