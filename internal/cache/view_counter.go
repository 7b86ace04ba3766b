package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// pathsKey is the sorted set of view counts keyed by request path
const pathsKey = "views:paths"

// ViewCounter keeps running per-path view totals in Redis. A nil
// *ViewCounter is valid and does nothing.
type ViewCounter struct {
	client *redis.Client
}

// NewViewCounter connects to Redis. It returns (nil, nil) when no address is
// configured so callers can run without the counter.
func NewViewCounter(cfg *config.RedisConfig) (*ViewCounter, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ViewCounter{client: rdb}, nil
}

// Incr adds one view to path
func (c *ViewCounter) Incr(ctx context.Context, path string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.ZIncrBy(ctx, pathsKey, 1, path).Err()
}

// Top returns the n most viewed paths, highest first
func (c *ViewCounter) Top(ctx context.Context, n int) ([]models.PathCount, error) {
	if c == nil || c.client == nil || n <= 0 {
		return nil, nil
	}

	entries, err := c.client.ZRevRangeWithScores(ctx, pathsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]models.PathCount, 0, len(entries))
	for _, e := range entries {
		path, _ := e.Member.(string)
		out = append(out, models.PathCount{Path: path, Views: int64(e.Score)})
	}
	return out, nil
}

// Reset drops every counter
func (c *ViewCounter) Reset(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, pathsKey).Err()
}

// Close releases the connection pool
func (c *ViewCounter) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
