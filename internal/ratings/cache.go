// Package ratings keeps opponent efficiency ratings in memory for the
// strength-of-schedule adjuster. Reads never block on I/O; the cache is
// refreshed out of band from a Source.
package ratings

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchup-engine/internal/metrics"
	"github.com/yourusername/matchup-engine/internal/models"
)

// Source loads the current ratings for one sport.
type Source interface {
	ListTeamRatings(ctx context.Context, sport string) ([]models.TeamRating, error)
}

// Cache is a TTL cache of team ratings keyed by sport and team key.
type Cache struct {
	cache  *cache.Cache
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache creates a rating cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Key builds the cache key for a team.
func Key(sport, teamKey string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(sport), strings.ToLower(strings.TrimSpace(teamKey)))
}

// Lookup returns the cached rating for teamKey, if present.
func (c *Cache) Lookup(sport, teamKey string) (models.TeamRating, bool) {
	if teamKey == "" {
		return models.TeamRating{}, false
	}
	if v, found := c.cache.Get(Key(sport, teamKey)); found {
		if r, ok := v.(models.TeamRating); ok {
			c.hits.Add(1)
			return r, true
		}
	}
	c.misses.Add(1)
	return models.TeamRating{}, false
}

// Store replaces the cached entries for the given ratings.
func (c *Cache) Store(ratings []models.TeamRating) {
	for _, r := range ratings {
		if r.TeamKey == "" {
			continue
		}
		c.cache.Set(Key(r.Sport, r.TeamKey), r, c.ttl)
	}
}

// Refresh reloads one sport from src. Existing entries stay in place when
// the load fails.
func (c *Cache) Refresh(ctx context.Context, src Source, sport string) (int, error) {
	loaded, err := src.ListTeamRatings(ctx, sport)
	if err != nil {
		return 0, fmt.Errorf("failed to load ratings for %s: %w", sport, err)
	}
	for i := range loaded {
		if loaded[i].Sport == "" {
			loaded[i].Sport = sport
		}
	}
	c.Store(loaded)

	_, _, ratio := c.Stats()
	metrics.RatingCacheHitRatio.Set(ratio)
	metrics.RatingCacheEntries.Set(float64(c.cache.ItemCount()))
	return len(loaded), nil
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *Cache) ItemCount() int {
	return c.cache.ItemCount()
}

// Clear flushes the cache and resets counters.
func (c *Cache) Clear() {
	c.cache.Flush()
	c.hits.Store(0)
	c.misses.Store(0)
}

// ForSport narrows the cache to a single sport.
func (c *Cache) ForSport(sport string) SportView {
	return SportView{cache: c, sport: sport}
}

// SportView is a Cache bound to one sport.
type SportView struct {
	cache *Cache
	sport string
}

// Lookup returns the cached rating for teamKey.
func (v SportView) Lookup(teamKey string) (models.TeamRating, bool) {
	if v.cache == nil {
		return models.TeamRating{}, false
	}
	return v.cache.Lookup(v.sport, teamKey)
}

// Refresher reloads the cache for a set of sports. It is run by the scheduler.
type Refresher struct {
	cache  *Cache
	source Source
	sports []string
	logger *logrus.Logger
}

// NewRefresher creates a refresher
func NewRefresher(c *Cache, src Source, sports []string, logger *logrus.Logger) *Refresher {
	return &Refresher{cache: c, source: src, sports: sports, logger: logger}
}

// Run refreshes every sport, logging and skipping failures.
func (r *Refresher) Run(ctx context.Context) error {
	var failed int
	for _, s := range r.sports {
		n, err := r.cache.Refresh(ctx, r.source, s)
		if err != nil {
			failed++
			r.logger.WithError(err).WithField("sport", s).Warn("Rating refresh failed")
			continue
		}
		r.logger.WithFields(logrus.Fields{
			"sport":   s,
			"ratings": n,
		}).Debug("Ratings refreshed")
	}
	if failed == len(r.sports) && failed > 0 {
		return fmt.Errorf("rating refresh failed for all %d sports", failed)
	}
	return nil
}
