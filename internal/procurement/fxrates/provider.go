// Package fxrates supplies the currency conversion table used for cost aggregation.
package fxrates

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"rfq-workers/internal/common/logger"
	"rfq-workers/internal/common/metrics"
)

// Provider overlays rates published to a Redis hash on a static table. Rates
// convert one unit of a currency into the reporting currency.
type Provider struct {
	static map[string]float64
	redis  *redis.Client
	key    string
	log    logger.Logger
}

// New builds a provider. A nil redis client serves the static table only.
func New(static map[string]float64, rdb *redis.Client, key string, log logger.Logger) *Provider {
	return &Provider{static: static, redis: rdb, key: key, log: log}
}

// Rates returns a fresh table on each call; callers may modify it.
func (p *Provider) Rates(ctx context.Context) map[string]float64 {
	rates := make(map[string]float64, len(p.static))
	for code, r := range p.static {
		rates[code] = r
	}
	if p.redis == nil {
		return rates
	}

	published, err := p.redis.HGetAll(ctx, p.key).Result()
	if err != nil {
		metrics.FXRatesFallbacks.Inc()
		p.log.Warn("published currency rates unavailable, using static table", map[string]interface{}{
			"key":   p.key,
			"error": err.Error(),
		})
		return rates
	}

	for code, raw := range published {
		r, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || r <= 0 {
			p.log.Debug("skipping unusable currency rate", map[string]interface{}{
				"currency": code,
				"value":    raw,
			})
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = r
	}
	return rates
}
