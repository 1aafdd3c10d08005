// Package config loads application configuration from file and environment.
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
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Edgar     EdgarConfig     `yaml:"edgar" mapstructure:"edgar"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
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

// EdgarConfig configures the SEC EDGAR provider.
type EdgarConfig struct {
	// UserAgent identifies the client to SEC, which requires a descriptive
	// User-Agent with contact details for automated access.
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	DataBaseURL string `yaml:"data_base_url" mapstructure:"data_base_url"`
	WWWBaseURL  string `yaml:"www_base_url" mapstructure:"www_base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// CacheConfig configures the facts cache. An empty backend disables caching;
// every request then recomputes from the provider.
type CacheConfig struct {
	Backend          string `yaml:"backend" mapstructure:"backend"` // "", "convex", "sqlite", "postgres"
	ConvexURL        string `yaml:"convex_url" mapstructure:"convex_url"`
	SQLitePath       string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL      string `yaml:"database_url" mapstructure:"database_url"`
	ReadTimeoutSecs  int    `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	// AlwaysRecompute disables the cache-hit short-circuit while keeping the
	// store-write, so the cache can be inspected without serving from it.
	AlwaysRecompute bool `yaml:"always_recompute" mapstructure:"always_recompute"`
}

// NormalizeConfig configures default normalization behavior.
type NormalizeConfig struct {
	Period string `yaml:"period" mapstructure:"period"` // "annual", "quarterly", or ""
	Limit  int    `yaml:"limit" mapstructure:"limit"`   // periods per concept; 0 = no cap
	// TaxonomyPath points at a YAML file overriding the built-in tag set.
	TaxonomyPath string `yaml:"taxonomy_path" mapstructure:"taxonomy_path"`
}

// Validate checks invariants the zero value and env parsing cannot enforce.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Edgar.UserAgent == "" {
		problems = append(problems, "edgar.user_agent is required (SEC rejects anonymous clients)")
	}
	switch c.Cache.Backend {
	case "", "convex", "sqlite", "postgres":
	default:
		problems = append(problems, "cache.backend must be one of \"\", \"convex\", \"sqlite\", \"postgres\"")
	}
	if c.Cache.Backend == "convex" && c.Cache.ConvexURL == "" {
		problems = append(problems, "cache.convex_url is required for the convex backend")
	}
	if c.Cache.Backend == "postgres" && c.Cache.DatabaseURL == "" {
		problems = append(problems, "cache.database_url is required for the postgres backend")
	}
	switch c.Normalize.Period {
	case "", "annual", "quarterly":
	default:
		problems = append(problems, "normalize.period must be \"annual\", \"quarterly\", or empty")
	}
	if c.Normalize.Limit < 0 {
		problems = append(problems, "normalize.limit must be >= 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EDGARFACTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("edgar.user_agent", "Sells Advisors blake@sellsadvisors.com")
	v.SetDefault("edgar.data_base_url", "https://data.sec.gov")
	v.SetDefault("edgar.www_base_url", "https://www.sec.gov")
	v.SetDefault("edgar.timeout_secs", 30)
	v.SetDefault("edgar.max_retries", 3)
	v.SetDefault("cache.backend", "")
	v.SetDefault("cache.convex_url", "")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.sqlite_path", "facts_cache.db")
	v.SetDefault("cache.read_timeout_secs", 5)
	v.SetDefault("cache.write_timeout_secs", 10)
	v.SetDefault("cache.always_recompute", false)
	v.SetDefault("normalize.period", "quarterly")
	v.SetDefault("normalize.limit", 4)
	v.SetDefault("normalize.taxonomy_path", "")

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
