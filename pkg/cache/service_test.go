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

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client), mr
}

func TestSetGetRoundTrip(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, svc.Set(ctx, "k", payload{Name: "x", Count: 2}, time.Minute))
	assert.True(t, mr.Exists("k"))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	var got payload
	require.NoError(t, svc.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "x", Count: 2}, got)
}

func TestGetMissAndDecodeErrors(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, svc.Get(ctx, "missing", &dest), ErrCacheMiss)

	require.NoError(t, mr.Set("broken", "{not json"))
	assert.ErrorIs(t, svc.Get(ctx, "broken", &dest), ErrDecode)

	raw, err := svc.GetRaw(ctx, "broken")
	require.NoError(t, err)
	assert.Equal(t, "{not json", raw)
}

func TestDeleteMany(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))

	require.NoError(t, svc.Delete(ctx, "a", "b", "c"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
	assert.NoError(t, svc.Delete(ctx))
}
