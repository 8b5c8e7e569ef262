package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Review    ReviewConfig    `yaml:"review" mapstructure:"review"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Sites     SitesConfig     `yaml:"sites" mapstructure:"sites"`
}

// StoreConfig configures the report persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RegistryConfig configures the NPI registry client.
type RegistryConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Version     string  `yaml:"version" mapstructure:"version"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ScrapeConfig configures the practice-website scraper.
type ScrapeConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyKB   int `yaml:"max_body_kb" mapstructure:"max_body_kb"`
}

// ReconcileConfig holds the similarity thresholds for the field decision
// table.
type ReconcileConfig struct {
	StrongMatch int `yaml:"strong_match" mapstructure:"strong_match"` // 0-100 similarity
	WeakMatch   int `yaml:"weak_match" mapstructure:"weak_match"`     // 0-100 similarity
}

// ReviewConfig holds the confidence cutoffs, priority weights, and level
// thresholds for record-level evaluation.
type ReviewConfig struct {
	LowConfidence     float64 `yaml:"low_confidence" mapstructure:"low_confidence"`
	VeryLowConfidence float64 `yaml:"very_low_confidence" mapstructure:"very_low_confidence"`
	ImpactWeight      float64 `yaml:"impact_weight" mapstructure:"impact_weight"`
	RiskWeight        float64 `yaml:"risk_weight" mapstructure:"risk_weight"`
	HighThreshold     float64 `yaml:"high_threshold" mapstructure:"high_threshold"`
	MediumThreshold   float64 `yaml:"medium_threshold" mapstructure:"medium_threshold"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentProviders int `yaml:"max_concurrent_providers" mapstructure:"max_concurrent_providers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SitesConfig points to the NPI-to-practice-website directory file.
type SitesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROVIDERDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "provider-directory.db")
	v.SetDefault("registry.base_url", "https://npiregistry.cms.hhs.gov/api/")
	v.SetDefault("registry.version", "2.1")
	v.SetDefault("registry.timeout_secs", 6)
	v.SetDefault("registry.rate_limit", 10)
	v.SetDefault("registry.user_agent", "provider-directory/1.0")
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.max_body_kb", 512)
	v.SetDefault("reconcile.strong_match", 85)
	v.SetDefault("reconcile.weak_match", 60)
	v.SetDefault("review.low_confidence", 0.6)
	v.SetDefault("review.very_low_confidence", 0.4)
	v.SetDefault("review.impact_weight", 0.6)
	v.SetDefault("review.risk_weight", 0.4)
	v.SetDefault("review.high_threshold", 7)
	v.SetDefault("review.medium_threshold", 4)
	v.SetDefault("batch.max_concurrent_providers", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
