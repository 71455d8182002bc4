package redis

import (
	"context"
	"net"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), "not-a-redis-url")
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse redis url")
}

func TestStoreSurfacesBackendErrors(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client := goredis.NewClient(&goredis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStore(client, 300*time.Second)

	_, err = store.Load(context.Background(), "alice")
	require.Error(t, err)
	assert.ErrorContains(t, err, "redis get content cache")

	err = store.Store(context.Background(), "alice", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "redis set content cache")
}

func TestKeyForNamespacesUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "repostctl:media_cache:alice", keyFor("alice"))
}
