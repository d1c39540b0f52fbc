// Package cache keeps fetched backtest results in redis so repeated views skip the bot API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/BotView/internal/metrics"
	"github.com/Alias1177/BotView/models"
)

// Options configure the redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// BacktestCache stores backtest results keyed by file and strategy
type BacktestCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New connects to redis and verifies the connection
func New(ctx context.Context, opts Options) (*BacktestCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewWithClient(client, opts.TTL), nil
}

// NewWithClient wraps an existing redis client
func NewWithClient(client *redis.Client, ttl time.Duration) *BacktestCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BacktestCache{
		client: client,
		ttl:    ttl,
		logger: log.With().Str("component", "backtest_cache").Logger(),
	}
}

func key(filename, strategy string) string {
	return fmt.Sprintf("backtest:%s:%s", filename, strategy)
}

// Get returns the cached result, or nil without error on a miss
func (c *BacktestCache) Get(ctx context.Context, filename, strategy string) (*models.BacktestResult, error) {
	data, err := c.client.Get(ctx, key(filename, strategy)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var result models.BacktestResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn().Err(err).Str("filename", filename).Msg("Dropping undecodable cache entry")
		c.client.Del(ctx, key(filename, strategy))
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &result, nil
}

// Set stores a result for the configured TTL
func (c *BacktestCache) Set(ctx context.Context, filename, strategy string, result *models.BacktestResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := c.client.Set(ctx, key(filename, strategy), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Close releases the redis connection
func (c *BacktestCache) Close() error {
	return c.client.Close()
}
