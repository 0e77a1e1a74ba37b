package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"nateiva/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Backup     BackupConfig     `yaml:"backup"`
	Booking    BookingConfig    `yaml:"booking"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// SnapshotConfig controls the durable JSON snapshot of the entity
// collections, written on every membership/user mutation.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type BookingConfig struct {
	// ConfirmDelay is how long the simulated payment takes before a pending
	// booking is confirmed. A cancel inside this window wins.
	ConfirmDelay       time.Duration `yaml:"confirm_delay"`
	MaxAdvanceDays     int           `yaml:"max_advance_days"`
	GuardTutorSchedule bool          `yaml:"guard_tutor_schedule"`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled"`
	BotToken string  `yaml:"bot_token"`
	ChatID   int64   `yaml:"chat_id"`
	SendRPS  float64 `yaml:"send_rps"`
}

// APIConfig controls the HTTP API surface. Keys carry an optional
// permission list; an empty list means full access.
type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled bool           `yaml:"enabled"`
	APIKeys []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Name        string   `yaml:"name"`
	Key         string   `yaml:"key"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; config values may reference its variables.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram notifications enabled but bot token is empty")
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis enabled but address is empty")
	}
	if c.Booking.ConfirmDelay < 0 {
		return errors.New("booking confirm_delay must not be negative")
	}
	if c.API.Enabled && c.API.Port == 0 {
		return errors.New("api enabled but port is not set")
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api keys configured")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "nateiva"
	}
	if c.Booking.ConfirmDelay == 0 {
		c.Booking.ConfirmDelay = models.DefaultConfirmDelaySeconds * time.Second
	}
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "data/snapshot.json"
	}
	if c.Telegram.SendRPS == 0 {
		c.Telegram.SendRPS = 1
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
