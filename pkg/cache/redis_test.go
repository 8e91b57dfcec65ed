package cache

import (
	"context"
	"strconv"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-marks/pkg/config"
)

func redisConfigFor(t *testing.T, server *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(server.Port())
	require.NoError(t, err)
	return config.RedisConfig{Host: server.Host(), Port: port}
}

func TestNewRedisPings(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	cfg := redisConfigFor(t, server)
	assert.Equal(t, server.Addr(), Addr(cfg))

	client, err := NewRedis(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := server.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	cfg := redisConfigFor(t, server)
	server.Close()

	_, err = NewRedis(context.Background(), cfg)
	assert.Error(t, err)
}
