package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const statsTTL = 10 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetReviewStats reads cached aggregate stats for a product. A cache miss
// returns ok=false, not an error.
func (c *Client) GetReviewStats(ctx context.Context, productID int64, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, reviewStatsKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return true, nil
}

// SetReviewStats caches aggregate stats for a product with a TTL.
func (c *Client) SetReviewStats(ctx context.Context, productID int64, stats interface{}) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return c.rdb.Set(ctx, reviewStatsKey(productID), raw, statsTTL).Err()
}

// InvalidateReviewStats drops the cached stats for a product. Called after
// any write that changes the approved-review set.
func (c *Client) InvalidateReviewStats(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, reviewStatsKey(productID)).Err()
}

func reviewStatsKey(productID int64) string {
	return fmt.Sprintf("review-stats:%d", productID)
}
