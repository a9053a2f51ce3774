package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/UW-GAC/pie-sub001/internal/domain"
)

const (
	searchCachePrefix  = "search_cache:"
	recentSearchPrefix = "recent_searches:"
	recentSearchLimit  = 10
	recentSearchTTL    = 30 * 24 * time.Hour
)

// SearchCache caches full-text search results in Redis. Entries expire after
// a configurable TTL; everything is best-effort, a Redis failure never fails
// the search itself.
type SearchCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewSearchCache creates a search cache with the given entry TTL.
func NewSearchCache(rdb goredis.Cmdable, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, ttl: ttl}
}

// cacheKey builds a deterministic key from the normalized query and the full
// filter. Every filter field participates, so two searches share an entry
// only when they would return the same rows.
func cacheKey(query string, filter domain.SearchFilter) string {
	return fmt.Sprintf("%s%s|%d|%t|%s",
		searchCachePrefix,
		strings.ToLower(strings.Join(strings.Fields(query), " ")),
		filter.StudyAccession,
		filter.IncludeDeprecated,
		strings.ToLower(filter.ExactName),
	)
}

// Get returns cached results for the query, or ok=false on a miss. Redis
// errors count as misses.
func (c *SearchCache) Get(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(query, filter)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("Search cache GET failed, falling through to database", "error", err)
		return nil, false
	}

	var results []domain.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		slog.Warn("Failed to unmarshal cached search results", "error", err)
		return nil, false
	}
	return results, true
}

// Set stores results for the query (best-effort).
func (c *SearchCache) Set(ctx context.Context, query string, filter domain.SearchFilter, results []domain.SearchResult) {
	encoded, err := json.Marshal(results)
	if err != nil {
		slog.Warn("Failed to marshal search results for cache", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(query, filter), encoded, c.ttl).Err(); err != nil {
		slog.Warn("Failed to populate search cache", "error", err)
	}
}

// PushRecent prepends the query to the user's recent-search list, trimming
// it to the last few entries.
func (c *SearchCache) PushRecent(ctx context.Context, userID uuid.UUID, query string) {
	key := recentSearchPrefix + userID.String()

	pipe := c.rdb.TxPipeline()
	pipe.LRem(ctx, key, 0, query)
	pipe.LPush(ctx, key, query)
	pipe.LTrim(ctx, key, 0, recentSearchLimit-1)
	pipe.Expire(ctx, key, recentSearchTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("Failed to record recent search", "error", err)
	}
}

// Recent returns the user's most recent search queries, newest first.
func (c *SearchCache) Recent(ctx context.Context, userID uuid.UUID) ([]string, error) {
	queries, err := c.rdb.LRange(ctx, recentSearchPrefix+userID.String(), 0, recentSearchLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	return queries, nil
}
