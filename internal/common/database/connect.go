package database

import (
	"context"
	"fmt"
	"time"

	"rfq-workers/internal/common/config"
	"rfq-workers/internal/common/logger"
)

// Pinger is implemented by every backing service client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Clients bundles the connections the workers share.
type Clients struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// Connect dials PostgreSQL, Redis and Elasticsearch in turn, retrying each
// until it answers a ping or the attempts run out.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*Clients, error) {
	attempts := cfg.Connect.MaxAttempts
	delay := config.GetDuration(cfg.Connect.InitialDelayMs)
	c := &Clients{}

	pg, err := NewPostgres(cfg.Postgres)
	if err != nil {
		return nil, err
	}
	c.Postgres = pg
	if err := RetryWithBackoff(ctx, pg.Ping, attempts, delay, log, "postgres"); err != nil {
		c.Close()
		return nil, err
	}

	rdb, err := NewRedis(cfg.Redis)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Redis = rdb
	if err := RetryWithBackoff(ctx, rdb.Ping, attempts, delay, log, "redis"); err != nil {
		c.Close()
		return nil, err
	}

	es, err := NewElasticsearch(cfg.Elasticsearch)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Elasticsearch = es
	if err := RetryWithBackoff(ctx, es.Ping, attempts, delay, log, "elasticsearch"); err != nil {
		c.Close()
		return nil, err
	}

	log.Info("backing services connected", map[string]interface{}{
		"postgres":      pg.target,
		"redis":         cfg.Redis.Address,
		"elasticsearch": cfg.Elasticsearch.GetURL(),
	})
	return c, nil
}

// Pingers returns the readiness checks keyed by service name.
func (c *Clients) Pingers() map[string]Pinger {
	return map[string]Pinger{
		"postgres":      c.Postgres,
		"redis":         c.Redis,
		"elasticsearch": c.Elasticsearch,
	}
}

func (c *Clients) Close() {
	_ = c.Postgres.Close()
	_ = c.Redis.Close()
}

// RetryWithBackoff calls op until it succeeds, doubling delay between
// attempts. It gives up early when ctx is cancelled.
func RetryWithBackoff(ctx context.Context, op func(context.Context) error, maxAttempts int, delay time.Duration, log logger.Logger, name string) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		log.Warn(name+" not ready, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt,
			"maxAttempts": maxAttempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("%s unavailable after %d attempts: %w", name, maxAttempts, err)
}
