package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	// ClientID scopes every roster fetch to one dashboard tenant.
	// Empty means no tenant filter.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`

	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects where campaign rosters come from. Mode "auto" builds
// a fallback chain from every configured source with the demo roster last.
type SourceConfig struct {
	Mode         string           `yaml:"mode" mapstructure:"mode"`
	CooldownSecs int              `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
	File         FileSourceConfig `yaml:"file" mapstructure:"file"`
	Postgres     PostgresConfig   `yaml:"postgres" mapstructure:"postgres"`
	Salesforce   SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	FixturePath  string           `yaml:"fixture_path" mapstructure:"fixture_path"`
}

// Cooldown returns the chain cooldown as a duration.
func (s SourceConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSecs) * time.Second
}

// FileSourceConfig points at a campaign export document.
type FileSourceConfig struct {
	// Location is a local path or an http(s)/ftp URL.
	Location string `yaml:"location" mapstructure:"location"`
	// Format is csv, json, or xlsx. Empty infers from the extension.
	Format string `yaml:"format" mapstructure:"format"`
}

// PostgresConfig points at the dashboard backend's campaign mirror.
type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	Username     string  `yaml:"username" mapstructure:"username"`
	KeyPath      string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL     string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// StoreConfig configures the snapshot store backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// FetchConfig tunes the export document fetcher.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate reports configuration mistakes a command cannot work around.
// All problems are collected into a single error.
func (c *Config) Validate() error {
	var problems []string

	switch c.Source.Mode {
	case "auto", "demo", "fixture", "file", "postgres", "salesforce":
	default:
		problems = append(problems, "source.mode must be one of auto, demo, fixture, file, postgres, salesforce")
	}
	if c.Source.Mode == "fixture" && c.Source.FixturePath == "" {
		problems = append(problems, "source.fixture_path is required for fixture mode")
	}
	if c.Source.Mode == "file" && c.Source.File.Location == "" {
		problems = append(problems, "source.file.location is required for file mode")
	}
	if c.Source.Mode == "postgres" && c.Source.Postgres.DatabaseURL == "" {
		problems = append(problems, "source.postgres.database_url is required for postgres mode")
	}
	if c.Source.Mode == "salesforce" {
		if c.Source.Salesforce.ClientID == "" {
			problems = append(problems, "source.salesforce.client_id is required for salesforce mode")
		}
		if c.Source.Salesforce.Username == "" {
			problems = append(problems, "source.salesforce.username is required for salesforce mode")
		}
		if c.Source.Salesforce.KeyPath == "" {
			problems = append(problems, "source.salesforce.key_path is required for salesforce mode")
		}
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	default:
		problems = append(problems, "store.driver must be memory or sqlite")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Fetch.MaxRetries < 0 {
		problems = append(problems, "fetch.max_retries must be >= 0")
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
	v.SetEnvPrefix("DONORPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.mode", "auto")
	v.SetDefault("source.cooldown_secs", 120)
	v.SetDefault("source.salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("source.salesforce.rate_limit_rps", 5)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "donorpulse.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("fetch.user_agent", "donorpulse/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_limit", 10)
	v.SetDefault("fetch.burst", 10)
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
