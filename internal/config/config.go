package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/tasi/internal/core"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
	MockAPI   MockAPIConfig   `mapstructure:"mockapi"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	APIKey      string        `mapstructure:"api_key"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// BackendConfig points at the stock data API.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RequestsPerSec int           `mapstructure:"requests_per_sec"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// DashboardConfig holds view behaviour knobs.
type DashboardConfig struct {
	HistoryDays       int           `mapstructure:"history_days"`
	StrategyDelay     time.Duration `mapstructure:"strategy_delay"`
	NotificationLimit int           `mapstructure:"notification_limit"`
	MaxJobs           int           `mapstructure:"max_jobs"`
}

// RefreshConfig schedules background reloads of live sessions.
type RefreshConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig enables an optional rotating log file next to stderr output.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MockAPIConfig configures the bundled mock backend.
type MockAPIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ArchiveConfig selects where `render --archive` stores snapshots.
type ArchiveConfig struct {
	Kind string          `mapstructure:"kind"` // empty disables
	Dir  string          `mapstructure:"dir"`
	S3   ArchiveS3Config `mapstructure:"s3"`
}

type ArchiveS3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Load reads configuration from file, layered over Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix("TASI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.max_sessions", d.Server.MaxSessions)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.requests_per_sec", d.Backend.RequestsPerSec)
	v.SetDefault("backend.max_retries", d.Backend.MaxRetries)
	v.SetDefault("dashboard.history_days", d.Dashboard.HistoryDays)
	v.SetDefault("dashboard.strategy_delay", d.Dashboard.StrategyDelay)
	v.SetDefault("dashboard.notification_limit", d.Dashboard.NotificationLimit)
	v.SetDefault("dashboard.max_jobs", d.Dashboard.MaxJobs)
	v.SetDefault("refresh.enabled", d.Refresh.Enabled)
	v.SetDefault("refresh.cron", d.Refresh.Cron)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("mockapi.host", d.MockAPI.Host)
	v.SetDefault("mockapi.port", d.MockAPI.Port)
	v.SetDefault("archive.kind", d.Archive.Kind)
	v.SetDefault("archive.dir", d.Archive.Dir)
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			SessionTTL:  2 * time.Hour,
			MaxSessions: 500,
		},
		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:5000",
			Timeout:        10 * time.Second,
			RequestsPerSec: 10,
			MaxRetries:     2,
		},
		Dashboard: DashboardConfig{
			HistoryDays:       30,
			StrategyDelay:     2 * time.Second,
			NotificationLimit: 5,
			MaxJobs:           100,
		},
		Refresh: RefreshConfig{
			Enabled: false,
			Cron:    "0 */5 * * * *",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			MaxSizeMB:  25,
			MaxBackups: 10,
			MaxAgeDays: 14,
		},
		MockAPI: MockAPIConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Archive: ArchiveConfig{
			Dir: "snapshots",
			S3:  ArchiveS3Config{Region: "us-east-1"},
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxSessions < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_sessions must be positive, got %d", c.Server.MaxSessions))
	}

	// Backend validation
	if c.Backend.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("backend base_url required"))
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backend base_url must be an absolute URL, got %q", c.Backend.BaseURL))
	}
	if c.Backend.MaxRetries < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_retries cannot be negative, got %d", c.Backend.MaxRetries))
	}

	// Dashboard validation
	if c.Dashboard.HistoryDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("history_days must be positive, got %d", c.Dashboard.HistoryDays))
	}

	// Refresh validation - only parse the schedule when it will be used
	if c.Refresh.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Refresh.Cron); err != nil {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("refresh cron %q: %w", c.Refresh.Cron, err))
		}
	}

	// Archive validation
	switch c.Archive.Kind {
	case "":
	case "local":
		if c.Archive.Dir == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive dir required for local archive"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive s3 bucket required"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive kind must be local or s3, got %q", c.Archive.Kind))
	}

	return nil
}
