// Package cache keeps recently computed analysis results in Redis so the
// dashboard can poll without re-scoring on every request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

const analysisTTL = 5 * time.Minute

// Cache is nil-safe: a nil *Cache (Redis not configured) misses on every
// read and drops every write.
type Cache struct{ rdb *redis.Client }

func New(rdb *redis.Client) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb}
}

func key(campaignID, rng string) string {
	return "analysis:" + campaignID + ":" + rng
}

// Analysis returns the cached result for a campaign+range, or found=false.
func (c *Cache) Analysis(ctx context.Context, campaignID, rng string) (models.AnalysisResult, bool) {
	var out models.AnalysisResult
	if c == nil {
		return out, false
	}
	raw, err := c.rdb.Get(ctx, key(campaignID, rng)).Bytes()
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

func (c *Cache) PutAnalysis(ctx context.Context, campaignID, rng string, res models.AnalysisResult) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key(campaignID, rng), raw, analysisTTL)
}

// InvalidateCampaign drops every cached range for one campaign. Called
// after a sync lands fresh rows.
func (c *Cache) InvalidateCampaign(ctx context.Context, campaignID string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, key(campaignID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}
