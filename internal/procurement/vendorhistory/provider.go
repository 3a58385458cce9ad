// Package vendorhistory resolves supplier performance history with a Redis
// read-through cache in front of PostgreSQL.
package vendorhistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"rfq-workers/internal/common/logger"
	"rfq-workers/internal/common/metrics"
	"rfq-workers/internal/scoring"
)

const keyPrefix = "vendor:history:"

const historyQuery = `
	SELECT supplier_name, on_time_rate, defect_rate, avg_lead_time_days
	FROM vendor_performance
	WHERE supplier_name = ANY($1)`

type Provider struct {
	db    *sql.DB
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

// New builds a provider. A nil redis client disables caching.
func New(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Provider {
	return &Provider{db: db, redis: rdb, ttl: ttl, log: log}
}

func cacheKey(name string) string {
	return keyPrefix + name
}

// Lookup returns the known history for each supplier. Suppliers without
// recorded performance are absent from the result.
func (p *Provider) Lookup(ctx context.Context, supplierNames []string) (map[string]scoring.VendorHistory, error) {
	names := uniqueNames(supplierNames)
	out := make(map[string]scoring.VendorHistory, len(names))
	if len(names) == 0 {
		return out, nil
	}

	misses := p.fromCache(ctx, names, out)
	if len(misses) == 0 {
		return out, nil
	}

	found, err := p.fromDatabase(ctx, misses)
	if err != nil {
		return nil, err
	}
	for name, h := range found {
		out[name] = h
	}
	p.store(ctx, found)

	return out, nil
}

// fromCache fills out with cached entries and returns the names still unresolved.
func (p *Provider) fromCache(ctx context.Context, names []string, out map[string]scoring.VendorHistory) []string {
	if p.redis == nil {
		return names
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = cacheKey(n)
	}

	vals, err := p.redis.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.HistoryCacheLookups.WithLabelValues("error").Inc()
		p.log.Warn("vendor history cache unavailable, reading from database", map[string]interface{}{
			"error": err.Error(),
		})
		return names
	}

	var misses []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, names[i])
			continue
		}
		var h scoring.VendorHistory
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			misses = append(misses, names[i])
			continue
		}
		out[names[i]] = h
	}

	metrics.HistoryCacheLookups.WithLabelValues("hit").Add(float64(len(names) - len(misses)))
	metrics.HistoryCacheLookups.WithLabelValues("miss").Add(float64(len(misses)))
	return misses
}

func (p *Provider) fromDatabase(ctx context.Context, names []string) (map[string]scoring.VendorHistory, error) {
	rows, err := p.db.QueryContext(ctx, historyQuery, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("query vendor performance: %w", err)
	}
	defer rows.Close()

	found := make(map[string]scoring.VendorHistory, len(names))
	for rows.Next() {
		var (
			name                    string
			onTime, defect, avgLead sql.NullFloat64
		)
		if err := rows.Scan(&name, &onTime, &defect, &avgLead); err != nil {
			return nil, fmt.Errorf("scan vendor performance: %w", err)
		}
		found[name] = scoring.VendorHistory{
			OnTimeRate:      nullable(onTime),
			DefectRate:      nullable(defect),
			AvgLeadTimeDays: nullable(avgLead),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor performance: %w", err)
	}
	return found, nil
}

func (p *Provider) store(ctx context.Context, found map[string]scoring.VendorHistory) {
	if p.redis == nil || len(found) == 0 {
		return
	}

	pipe := p.redis.Pipeline()
	for name, h := range found {
		data, err := json.Marshal(h)
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKey(name), data, p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		p.log.Warn("failed to cache vendor history", map[string]interface{}{
			"error":   err.Error(),
			"vendors": len(found),
		})
	}
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
