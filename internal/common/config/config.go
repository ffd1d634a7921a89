// internal/common/config/config.go
package config

import (
	"fmt"

	"college-recommender/internal/recommendation"
)

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig               `mapstructure:"app"`
	Camunda        CamundaConfig           `mapstructure:"camunda"`
	Database       DatabaseConfig          `mapstructure:"database"`
	Workers        map[string]WorkerConfig `mapstructure:"workers"`
	Logging        LoggingConfig           `mapstructure:"logging"`
	Registry       RegistryConfig          `mapstructure:"registry"`
	Recommendation RecommendationConfig    `mapstructure:"recommendation"`
	Search         SearchConfig            `mapstructure:"search"`
	Server         ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
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
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
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
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// RecommendationConfig tunes the recommendation engine and its candidate cache.
type RecommendationConfig struct {
	MaxResults   int                      `mapstructure:"max_results"`
	HistoryYears int                      `mapstructure:"history_years"`
	PoolSizes    recommendation.PoolSizes `mapstructure:"pool_sizes"`
	CacheTTL     int                      `mapstructure:"cache_ttl"` // seconds, 0 disables the cache
}

// EngineConfig converts to the engine's own config type.
func (r RecommendationConfig) EngineConfig() recommendation.Config {
	return recommendation.Config{
		MaxResults:   r.MaxResults,
		HistoryYears: r.HistoryYears,
		PoolSizes:    r.PoolSizes,
	}
}

type SearchConfig struct {
	Index          string `mapstructure:"index"`
	MaxResults     int    `mapstructure:"max_results"`
	MinQueryLength int    `mapstructure:"min_query_length"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}
