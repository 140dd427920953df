// Package rds provides a prefixed byte cache on redis
package rds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = errors.New("rds: cache miss")

// Config configures the redis client
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int

	// Prefix namespaces every key; defaults to "igmod:"
	Prefix string
}

// Client is a redis backed cache
type Client struct {
	rdb    *redis.Client
	prefix string
}

// Open creates the client and pings once
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("rds: empty addr")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("rds: ping: %w", err)
	}
	return newClient(rdb, cfg.Prefix), nil
}

func newClient(rdb *redis.Client, prefix string) *Client {
	if prefix == "" {
		prefix = "igmod:"
	}
	return &Client{rdb: rdb, prefix: prefix}
}

func (c *Client) key(k string) string { return c.prefix + k }

// Get returns the stored bytes or ErrMiss
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("rds: get: %w", err)
	}
	return v, nil
}

// Set stores value for ttl; ttl 0 keeps it until deleted
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("rds: set: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every key under prefix
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("rds: delete: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("rds: scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("rds: delete: %w", err)
		}
	}
	return nil
}

// Ping checks the server answers
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return errors.New("rds: nil client")
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the pool
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
