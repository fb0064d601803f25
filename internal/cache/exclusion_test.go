package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordiccms/content-expiry/internal/cache"
	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/testhelpers"
)

func newTestCache(t *testing.T, ttl time.Duration) (*cache.ExclusionCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewExclusionCache(client, ttl, testhelpers.NewTestLogger()), mr
}

func TestExclusionCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	refs := []contenttypes.ContentRef{
		{ContentType: "page", ObjectID: 3},
		{ContentType: "alias", ObjectID: 9},
	}
	require.NoError(t, c.Set(ctx, 1, refs))

	got, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, refs, got)
}

func TestExclusionCache_MissOnUnknownSite(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	_, ok := c.Get(context.Background(), 42)
	assert.False(t, ok)
}

func TestExclusionCache_SitesAreIsolated(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, []contenttypes.ContentRef{{ContentType: "page", ObjectID: 3}}))
	require.NoError(t, c.Set(ctx, 2, []contenttypes.ContentRef{{ContentType: "page", ObjectID: 7}}))

	site1, ok := c.Get(ctx, 1)
	require.True(t, ok)
	site2, ok := c.Get(ctx, 2)
	require.True(t, ok)

	assert.Equal(t, int64(3), site1[0].ObjectID)
	assert.Equal(t, int64(7), site2[0].ObjectID)
}

func TestExclusionCache_EntryExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, []contenttypes.ContentRef{{ContentType: "page", ObjectID: 3}}))

	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok, "entry must be gone after the TTL")
}

func TestExclusionCache_EmptySetIsAHit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, nil))

	got, ok := c.Get(ctx, 1)
	require.True(t, ok, "an empty exclusion set is a valid cached value, not a miss")
	assert.Empty(t, got)
}

func TestExclusionCache_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set("content_expiry_changelist_exclusion_1", "not-json"))

	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
}
