package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

type memoryCacheRepo struct {
	entries     map[string]interface{}
	gets        int
	invalidated []string
	getErr      error
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*models.RecordTable)) = *(v.(*models.RecordTable))
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = map[string]interface{}{}
	}
	m.entries[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func TestViewServiceOverview(t *testing.T) {
	records, _ := newLoadedRecordService(t, alice, bob)
	views := NewViewService(records, nil, time.Minute, nil)

	table, err := views.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "All Student Records", table.Title)
	assert.Equal(t, "Total Students: 2 | Average Overall Percentage: 52.81%", table.Summary)
	require.NotNil(t, table.Class)
	assert.Equal(t, 2, table.Class.TotalStudents)
	assert.Len(t, table.Records, 2)
}

func TestViewServiceOverviewEmpty(t *testing.T) {
	records, _ := newLoadedRecordService(t)
	table, err := NewViewService(records, nil, time.Minute, nil).Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No student data available.", table.Summary)
	assert.Empty(t, table.Records)
}

func TestViewServiceLookupAndExtreme(t *testing.T) {
	records, _ := newLoadedRecordService(t, alice, bob)
	views := NewViewService(records, nil, time.Minute, nil)

	table, err := views.Lookup(context.Background(), "bo")
	require.NoError(t, err)
	assert.Equal(t, "Individual Record: Bob", table.Title)
	assert.Empty(t, table.Summary)

	_, err = views.Lookup(context.Background(), "zed")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	table, err = views.Extreme(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "Highest Overall Mark", table.Title)
	assert.Equal(t, "Student: Alice | Score: 134", table.Summary)

	table, err = views.Extreme(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "Lowest Overall Mark", table.Title)
	assert.Equal(t, "Student: Bob | Score: 35", table.Summary)
}

func TestViewServiceSortedTitles(t *testing.T) {
	records, _ := newLoadedRecordService(t, alice, bob)
	views := NewViewService(records, nil, time.Minute, nil)

	asc, err := views.Sorted(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "Records Sorted (Ascending by Total Mark)", asc.Title)
	assert.Equal(t, []int{1002, 1001}, codes(asc.Records))

	desc, err := views.Sorted(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "Records Sorted (Descending by Total Mark)", desc.Title)
	assert.Equal(t, []int{1001, 1002}, codes(desc.Records))
}

func TestViewServiceCachesPerRevision(t *testing.T) {
	records, _ := newLoadedRecordService(t, alice)
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop())
	views := NewViewService(records, cache, time.Minute, nil)
	ctx := context.Background()

	first, err := views.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, repo.entries, 1)

	second, err := views.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, repo.entries, 1)

	_, err = records.Add(ctx, bob)
	require.NoError(t, err)

	third, err := views.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, third.Records, 2)
	assert.Len(t, repo.entries, 2)

	require.NoError(t, views.Invalidate(ctx))
	assert.Empty(t, repo.entries)
	require.Len(t, repo.invalidated, 1)
	assert.True(t, strings.HasPrefix(repo.invalidated[0], "marks:view:"))
}

func TestViewServiceCacheFailureFallsBack(t *testing.T) {
	records, _ := newLoadedRecordService(t, alice)
	repo := &memoryCacheRepo{getErr: errors.New("redis down")}
	views := NewViewService(records, NewCacheService(repo, nil, time.Minute, nil), time.Minute, nil)

	table, err := views.Overview(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)
}

func TestViewServiceWithRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	records, _ := newLoadedRecordService(t, alice, bob)
	metrics := NewMetricsService()
	cache := NewCacheService(redisCacheRepo{client: client}, metrics, time.Minute, nil)
	views := NewViewService(records, cache, time.Minute, nil)
	ctx := context.Background()

	first, err := views.Sorted(ctx, false)
	require.NoError(t, err)
	second, err := views.Sorted(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, server.Keys(), 1)

	require.NoError(t, views.Invalidate(ctx))
	assert.Empty(t, server.Keys())
}
