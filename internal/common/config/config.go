package config

import (
	"fmt"

	"rfq-workers/internal/scoring"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Scoring  ScoringConfig           `mapstructure:"scoring"`
	Ranking  RankingConfig           `mapstructure:"ranking"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Connect       ConnectConfig       `mapstructure:"connect"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"`
}

// GetURL returns the URL field or the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// ConnectConfig bounds how long startup waits for each backing service.
type ConnectConfig struct {
	MaxAttempts    int `mapstructure:"max_attempts"`
	InitialDelayMs int `mapstructure:"initial_delay_ms"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ScoringConfig holds the service-wide defaults for vendor scoring. Job
// variables may override weights and currency rates per request.
type ScoringConfig struct {
	Weights       scoring.WeightOverrides `mapstructure:"weights"`
	CurrencyRates map[string]float64      `mapstructure:"currency_rates"`

	MissingItemPenalty  *float64 `mapstructure:"missing_item_penalty"`
	UnknownLeadTimeDays *float64 `mapstructure:"unknown_lead_time_days"`
	DefaultDefectRate   *float64 `mapstructure:"default_defect_rate"`
	DefaultOnTimeRate   *float64 `mapstructure:"default_on_time_rate"`

	HistoryCacheTTLSeconds int    `mapstructure:"history_cache_ttl_seconds"`
	FXRatesKey             string `mapstructure:"fx_rates_key"`
}

// Tunables returns the engine constants with any configured value applied.
func (s ScoringConfig) Tunables() scoring.Tunables {
	t := scoring.DefaultTunables()
	if s.MissingItemPenalty != nil {
		t.MissingItemPenalty = *s.MissingItemPenalty
	}
	if s.UnknownLeadTimeDays != nil {
		t.UnknownLeadTimeDays = *s.UnknownLeadTimeDays
	}
	if s.DefaultDefectRate != nil {
		t.DefaultDefectRate = *s.DefaultDefectRate
	}
	if s.DefaultOnTimeRate != nil {
		t.DefaultOnTimeRate = *s.DefaultOnTimeRate
	}
	return t
}

// RankingConfig holds settings for the publish-vendor-ranking worker.
type RankingConfig struct {
	Index string `mapstructure:"index"`
}
