package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/woundtrack/supply-api/internal/model"
)

const cacheTTL = 60 * time.Second

// Cache stores primary aggregation results in Redis so repeated dashboard
// loads within the TTL skip the join-heavy queries. Degraded results are
// never cached. All cache faults are soft: callers fall through to the
// store.
type Cache struct {
	client *redis.Client
}

func NewCache(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &Cache{client: redis.NewClient(opts)}, nil
}

func cacheKey(view string, filters *model.ReportFilters) string {
	facility := "all"
	if filters.FacilityID != nil {
		facility = filters.FacilityID.String()
	}
	month := filters.Month
	if month == "" {
		month = "all"
	}
	return fmt.Sprintf("report:%s:%s:%s", view, facility, month)
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, payload, cacheTTL)
}

// InvalidateFacility drops cached views touching the facility. Called on
// ledger writes so reports do not serve stale totals past the write.
func (c *Cache) InvalidateFacility(ctx context.Context, facilityID string) {
	if c == nil {
		return
	}
	for _, view := range []string{"dashboard", "itemized"} {
		patterns := []string{
			fmt.Sprintf("report:%s:%s:*", view, facilityID),
			fmt.Sprintf("report:%s:all:*", view),
		}
		for _, pattern := range patterns {
			iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
			for iter.Next(ctx) {
				c.client.Del(ctx, iter.Val())
			}
		}
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
