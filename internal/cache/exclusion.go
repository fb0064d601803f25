package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/logger"
)

// exclusionKeyPrefix namespaces the per-site exclusion entries.
const exclusionKeyPrefix = "content_expiry_changelist_exclusion"

// ExclusionCache caches the set of content ids hidden from a site's
// changelist. Entries expire after a short TTL; correctness never depends on
// the cache, a miss always means "recompute". Concurrent writers for the same
// site race harmlessly: last writer wins and both values are equally fresh.
type ExclusionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewExclusionCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ExclusionCache {
	return &ExclusionCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *ExclusionCache) key(siteID int64) string {
	return fmt.Sprintf("%s_%d", exclusionKeyPrefix, siteID)
}

// Get returns the cached exclusion set for a site. ok is false on a miss or
// any Redis error; callers must then recompute. An error is deliberately
// treated as a miss so a degraded cache never breaks site scoping.
func (c *ExclusionCache) Get(ctx context.Context, siteID int64) ([]contenttypes.ContentRef, bool) {
	key := c.key(siteID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Exclusion cache read failed",
				logger.String("key", key),
				logger.Error(err),
			)
		}
		return nil, false
	}

	var refs []contenttypes.ContentRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		c.logger.Warn("Exclusion cache entry corrupt, treating as miss",
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, false
	}

	return refs, true
}

// Set stores the exclusion set for a site with the configured TTL.
func (c *ExclusionCache) Set(ctx context.Context, siteID int64, refs []contenttypes.ContentRef) error {
	if refs == nil {
		refs = []contenttypes.ContentRef{}
	}

	payload, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("marshal exclusion set: %w", err)
	}

	key := c.key(siteID)
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set exclusion cache %s: %w", key, err)
	}

	c.logger.Debug("Exclusion cache populated",
		logger.String("key", key),
		logger.Int("entries", len(refs)),
		logger.Duration("ttl", c.ttl),
	)
	return nil
}
