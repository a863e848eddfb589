package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := setupTestRedis(t)

	s, err := NewRedisStore(ctx, mr.Addr())
	require.NoError(t, err)
	defer s.Close()

	var _ Store = (*RedisStore)(nil)

	require.NoError(t, s.Set(ctx, "token", "abc"))
	value, exists, err := s.Get(ctx, "token")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "abc", value)

	// Ключи хранятся в пространстве имён клиента
	raw, err := mr.Get("shorty:token")
	assert.NoError(t, err)
	assert.Equal(t, "abc", raw)

	_, exists, err = s.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Set(ctx, "user", "{}"))
	require.NoError(t, s.Delete(ctx, "token", "user"))
	assert.False(t, mr.Exists("shorty:token"))
	assert.False(t, mr.Exists("shorty:user"))
	assert.NoError(t, s.Delete(ctx))
}

func TestRedisStore_URL(t *testing.T) {
	mr := setupTestRedis(t)

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRedisStore_ConnectionError(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}

func TestRedisStore_ServerError(t *testing.T) {
	ctx := context.Background()
	mr := setupTestRedis(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, "test:")
	defer s.Close()

	mr.SetError("boom")
	_, _, err := s.Get(ctx, "token")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "token", "x"))
	assert.Error(t, s.Delete(ctx, "token"))
}
