package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrAPIKeyMissing       = errors.New("tmdb.api_key is not configured")
	ErrCatalogPathsMissing = errors.New("catalog.movies_path and catalog.similarity_path are required")
)

// Config holds all application configuration.
type Config struct {
	// DeveloperMode serves canned metadata instead of calling TMDB.
	DeveloperMode bool `mapstructure:"developer_mode"`

	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Session   SessionConfig   `mapstructure:"session"`
	Trending  TrendingConfig  `mapstructure:"trending"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TMDBConfig holds TMDB API and outbound HTTP policy configuration.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `mapstructure:"timeout"`
	// Retries is the number of additional attempts after the first one.
	Retries int `mapstructure:"retries"`
	// BackoffFactor in seconds; the sleep before retry n is factor * 2^(n-1).
	BackoffFactor float64 `mapstructure:"backoff_factor"`
	// RateLimit is the maximum number of outbound requests per second (0 disables pacing).
	RateLimit   float64 `mapstructure:"rate_limit"`
	IDCacheSize int     `mapstructure:"id_cache_size"`
}

// Backoff returns the backoff factor as a duration.
func (c TMDBConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffFactor * float64(time.Second))
}

// RequestTimeout returns the per-request timeout as a duration.
func (c TMDBConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// CatalogConfig points at the offline-built artifacts.
type CatalogConfig struct {
	MoviesPath     string `mapstructure:"movies_path"`
	SimilarityPath string `mapstructure:"similarity_path"`
}

// RecommendConfig holds similarity lookup settings.
type RecommendConfig struct {
	Count   int `mapstructure:"count"`
	Workers int `mapstructure:"workers"`
}

// SessionConfig holds per-visitor session settings.
type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	HistorySize int           `mapstructure:"history_size"`
	MaxAge      time.Duration `mapstructure:"max_age"`
	PurgeCron   string        `mapstructure:"purge_cron"`
}

// TrendingConfig holds the trending refresh schedule.
type TrendingConfig struct {
	Cron string `mapstructure:"cron"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/cinematch.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		TMDB: TMDBConfig{
			APIKey:        EmbeddedTMDBKey,
			BaseURL:       "https://api.themoviedb.org/3",
			ImageBaseURL:  "https://image.tmdb.org/t/p",
			Timeout:       20,
			Retries:       5,
			BackoffFactor: 1,
			RateLimit:     40,
			IDCacheSize:   4096,
		},
		Recommend: RecommendConfig{
			Count:   5,
			Workers: 5,
		},
		Session: SessionConfig{
			CookieName:  "cinematch_session",
			HistorySize: 5,
			MaxAge:      30 * 24 * time.Hour,
			PurgeCron:   "0 4 * * *",
		},
		Trending: TrendingConfig{
			Cron: "0 * * * *",
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.cinematch")
	}

	v.SetEnvPrefix("CINEMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports configuration errors that must stop the process before it serves.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.TMDB.APIKey) == "" && !c.DeveloperMode {
		errs = append(errs, ErrAPIKeyMissing)
	}
	if c.Catalog.MoviesPath == "" || c.Catalog.SimilarityPath == "" {
		errs = append(errs, ErrCatalogPathsMissing)
	}
	return errors.Join(errs...)
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("developer_mode", false)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("tmdb.api_key", d.TMDB.APIKey)
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", d.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.timeout", d.TMDB.Timeout)
	v.SetDefault("tmdb.retries", d.TMDB.Retries)
	v.SetDefault("tmdb.backoff_factor", d.TMDB.BackoffFactor)
	v.SetDefault("tmdb.rate_limit", d.TMDB.RateLimit)
	v.SetDefault("tmdb.id_cache_size", d.TMDB.IDCacheSize)

	// Bound so AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("catalog.movies_path", "")
	v.SetDefault("catalog.similarity_path", "")

	v.SetDefault("recommend.count", d.Recommend.Count)
	v.SetDefault("recommend.workers", d.Recommend.Workers)

	v.SetDefault("session.cookie_name", d.Session.CookieName)
	v.SetDefault("session.history_size", d.Session.HistorySize)
	v.SetDefault("session.max_age", d.Session.MaxAge)
	v.SetDefault("session.purge_cron", d.Session.PurgeCron)

	v.SetDefault("trending.cron", d.Trending.Cron)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
