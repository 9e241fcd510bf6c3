package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/me/botadmin/internal/media"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOTADMIN_"

// ServerConfig holds configuration for the botadmin server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `yaml:"log_format"` // Log format: text, json
	DBPath    string `yaml:"db_path"`    // SQLite database path (":memory:" for testing)

	API APIConfig `yaml:"api"`

	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`

	// CORSOrigins lists origins allowed to call the JSON API.
	CORSOrigins []string `yaml:"cors_origins"`

	Schedules Schedules `yaml:"schedules"`

	// ViewIdle is how long an untouched list view stays mounted.
	ViewIdle time.Duration `yaml:"view_idle"`

	// Media selects the image store: "botapi" (default) or "s3".
	Media   string         `yaml:"media"`
	MediaS3 media.S3Config `yaml:"media_s3"`
}

// APIConfig configures the bot API client.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// Schedules are cron expressions for maintenance jobs.
type Schedules struct {
	PurgeSessions string `yaml:"purge_sessions"`
	SweepViews    string `yaml:"sweep_views"`
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		API: APIConfig{
			BaseURL: "https://bot-api.portobello.ru",
			Timeout: 30 * time.Second,
		},
		SessionTTL:  12 * time.Hour,
		CORSOrigins: []string{"*"},
		Schedules: Schedules{
			PurgeSessions: "@every 15m",
			SweepViews:    "@every 5m",
		},
		ViewIdle: 30 * time.Minute,
		Media:    "botapi",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then envFile and the process environment.
func Load(path, envFile string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from BOTADMIN_* variables.
func (c *ServerConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
		return nil
	}

	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("DB_PATH", &c.DBPath)
	str("API_URL", &c.API.BaseURL)
	str("MEDIA", &c.Media)
	str("S3_BUCKET", &c.MediaS3.Bucket)
	str("S3_PREFIX", &c.MediaS3.Prefix)
	str("S3_REGION", &c.MediaS3.Region)
	str("S3_ENDPOINT", &c.MediaS3.Endpoint)
	str("S3_PUBLIC_URL", &c.MediaS3.PublicBaseURL)

	if err := dur("API_TIMEOUT", &c.API.Timeout); err != nil {
		return err
	}
	if err := dur("SESSION_TTL", &c.SessionTTL); err != nil {
		return err
	}
	if err := dur("VIEW_IDLE", &c.ViewIdle); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "API_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sAPI_RETRIES: %w", EnvPrefix, err)
		}
		c.API.MaxRetries = n
	}
	if v, ok := lookup(EnvPrefix + "SECURE_COOKIES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSECURE_COOKIES: %w", EnvPrefix, err)
		}
		c.SecureCookies = b
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	return nil
}

// Validate checks settings that would otherwise fail at first use.
func (c ServerConfig) Validate() error {
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	switch c.Media {
	case "", "botapi":
	case "s3":
		if c.MediaS3.Bucket == "" {
			return errors.New("media_s3.bucket is required when media is s3")
		}
	default:
		return fmt.Errorf("unknown media store %q", c.Media)
	}
	return nil
}
