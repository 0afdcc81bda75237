// Package redis holds the optional Redis-backed token denylist and sign-in
// rate limiter. A nil *Client is valid and behaves as "not configured".
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Client wraps a go-redis client.
type Client struct {
	rdb    *goredis.Client
	logger *slog.Logger
}

// NewClient connects and pings the server. It returns nil, nil when no
// address is configured.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis connected", "addr", cfg.Addr)
	return &Client{rdb: rdb, logger: logger}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

const denylistPrefix = "ims:token:revoked:"

// Denylist implements the token denylist on top of Redis keys with TTL.
type Denylist struct {
	c *Client
}

func (c *Client) Denylist() *Denylist { return &Denylist{c: c} }

// Revoke stores jti until the token would have expired anyway.
func (d *Denylist) Revoke(ctx context.Context, jti string, expires time.Time) error {
	ttl := time.Until(expires)
	if ttl <= 0 {
		return nil
	}
	return d.c.rdb.Set(ctx, denylistPrefix+jti, "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.c.rdb.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
