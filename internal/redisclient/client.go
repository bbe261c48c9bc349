package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

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

// AcquirePaymentLock takes a short lock serializing payment processing
// for one order. Returns false if another request holds it.
func (c *Client) AcquirePaymentLock(ctx context.Context, orderID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:payment:%d", orderID), "1", ttl).Result()
}

// ReleasePaymentLock releases the payment lock for an order
func (c *Client) ReleasePaymentLock(ctx context.Context, orderID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:payment:%d", orderID)).Err()
}

// SetCartCount caches the cart badge count for an owner
func (c *Client) SetCartCount(ctx context.Context, ownerKey string, count int) error {
	return c.rdb.Set(ctx, fmt.Sprintf("cart:count:%s", ownerKey), count, 24*time.Hour).Err()
}

// GetCartCount reads a cached cart badge count; returns -1 on miss
func (c *Client) GetCartCount(ctx context.Context, ownerKey string) (int, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf("cart:count:%s", ownerKey)).Int()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return val, nil
}

// InvalidateCartCount drops a cached cart badge count
func (c *Client) InvalidateCartCount(ctx context.Context, ownerKey string) {
	_ = c.rdb.Del(ctx, fmt.Sprintf("cart:count:%s", ownerKey)).Err()
}

// CacheJSON stores a JSON-encoded value under a catalog cache key
func (c *Client) CacheJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("cache:%s", key), data, ttl).Err()
}

// GetJSON loads a JSON-encoded value from a catalog cache key. Returns
// false on miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("cache:%s", key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

// InvalidateCache drops a catalog cache key
func (c *Client) InvalidateCache(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("cache:%s", key)).Err()
}
