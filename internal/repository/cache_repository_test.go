package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

func newCacheRepoForTest(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	repo := NewCacheRepository(client, nil)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, server
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, server := newCacheRepoForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "marks:view:a", map[string]int{"total": 2}, time.Minute))
	assert.True(t, server.Exists("marks:view:a"))

	var got map[string]int
	require.NoError(t, repo.Get(ctx, "marks:view:a", &got))
	assert.Equal(t, 2, got["total"])

	server.FastForward(2 * time.Minute)
	err := repo.Get(ctx, "marks:view:a", &got)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, server := newCacheRepoForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "marks:view:x:overview:r1", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "marks:view:x:sorted-asc:r1", 2, time.Minute))
	require.NoError(t, repo.Set(ctx, "other:key", 3, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "marks:view:*"))

	assert.False(t, server.Exists("marks:view:x:overview:r1"))
	assert.False(t, server.Exists("marks:view:x:sorted-asc:r1"))
	assert.True(t, server.Exists("other:key"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest int
	assert.True(t, errors.Is(repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
	assert.NoError(t, repo.Ping(context.Background()))
}
