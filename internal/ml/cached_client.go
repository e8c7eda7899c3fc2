// Package ml provides the client for the place-probability model service.
package ml

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/config"
	"github.com/yourusername/keiba-predictor/internal/logger"
)

// CachedClient wraps Client with a per-race score cache. Scores are stable
// between odds refreshes, so repeated prediction requests for the same race
// reuse one upstream call.
type CachedClient struct {
	client *Client
	cache  *cache.Cache
	log    *logger.MLLogger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedClient creates a caching model service client.
func NewCachedClient(cfg *config.MLServiceConfig, baseLogger *logrus.Logger) *CachedClient {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &CachedClient{
		client: NewClient(cfg, baseLogger),
		cache:  cache.New(ttl, ttl*2),
		log:    logger.NewMLLogger(baseLogger),
	}
}

// PlaceProbabilities fetches place probabilities, serving from cache when the
// race was scored within the TTL.
func (c *CachedClient) PlaceProbabilities(ctx context.Context, raceID uuid.UUID, horseIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	key := raceID.String()

	if cached, found := c.cache.Get(key); found {
		if scores, ok := cached.(map[uuid.UUID]float64); ok {
			c.hits.Add(1)
			c.updateHitRatio()
			ScoreRequestsTotal.WithLabelValues("true").Inc()
			c.log.LogScoreRequest(key, len(scores), true, 0)
			return scores, nil
		}
	}

	c.misses.Add(1)
	c.updateHitRatio()

	scores, err := c.client.PlaceProbabilities(ctx, raceID, horseIDs)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, scores)
	return scores, nil
}

// Health checks whether the underlying model service is reachable.
func (c *CachedClient) Health(ctx context.Context) error {
	return c.client.Health(ctx)
}

// Invalidate drops the cached scores for a race, e.g. after a model retrain.
func (c *CachedClient) Invalidate(raceID uuid.UUID) {
	c.cache.Delete(raceID.String())
	c.log.LogCacheEviction(raceID.String())
}

func (c *CachedClient) updateHitRatio() {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return
	}
	CacheHitRatio.Set(float64(hits) / float64(total))
}
