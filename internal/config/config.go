package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/soochol/postplan/internal/bulk"
)

// Environment variables that override the file.
const (
	EnvDatabaseURL = "POSTPLAN_DATABASE_URL"
	EnvJWTSecret   = "POSTPLAN_JWT_SECRET"
	EnvPort        = "POSTPLAN_PORT"
	EnvSlackURL    = "POSTPLAN_SLACK_WEBHOOK_URL"
	EnvTelegramTok = "POSTPLAN_TELEGRAM_TOKEN"
	EnvSMTPPass    = "POSTPLAN_SMTP_PASSWORD"
)

// Config holds the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Notify    NotifyConfig    `yaml:"notify"`
	Media     MediaConfig     `yaml:"media"`
	// Holidays are "YYYY-MM-DD" dates skipped by every bulk request that
	// asks to skip holidays.
	Holidays []string `yaml:"holidays"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// everything in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// SchedulerConfig holds settings for the recurring schedule dispatcher.
type SchedulerConfig struct {
	Timezone      string `yaml:"timezone"`       // zone for the cron specs (default: UTC)
	Tick          string `yaml:"tick"`           // cron spec (default: "@every 30s")
	MaxConcurrent int    `yaml:"max_concurrent"` // schedules dispatched in parallel (default: 4)
}

// MetricsConfig holds in-process metrics settings.
type MetricsConfig struct {
	Retention time.Duration `yaml:"retention"` // default: 24h
	Sweep     string        `yaml:"sweep"`     // cron spec (default: "@every 5m")
}

// NotifyConfig holds the channels told about queued posts. Each channel is
// enabled by its required fields being set.
type NotifyConfig struct {
	Slack    SlackConfig    `yaml:"slack"`
	Telegram TelegramConfig `yaml:"telegram"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

type SMTPConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Password string   `yaml:"password"`
	Subject  string   `yaml:"subject"`
}

// MediaConfig holds settings for uploaded post attachments.
type MediaConfig struct {
	Dir         string `yaml:"dir"`           // default: data/media
	MaxUploadMB int64  `yaml:"max_upload_mb"` // default: 25
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Scheduler: SchedulerConfig{
			Timezone:      "UTC",
			Tick:          "@every 30s",
			MaxConcurrent: 4,
		},
		Metrics: MetricsConfig{
			Retention: 24 * time.Hour,
			Sweep:     "@every 5m",
		},
		Media: MediaConfig{
			Dir:         "data/media",
			MaxUploadMB: 25,
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config with
// environment overrides applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads ".env" into the environment when present, then tries
// "config.yaml" from the current directory. If the file does not exist, it
// returns defaults with environment overrides applied.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := Load("config.yaml")
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = defaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvSlackURL); v != "" {
		c.Notify.Slack.WebhookURL = v
	}
	if v := os.Getenv(EnvTelegramTok); v != "" {
		c.Notify.Telegram.Token = v
	}
	if v := os.Getenv(EnvSMTPPass); v != "" {
		c.Notify.SMTP.Password = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks values the application cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Metrics.Retention <= 0 {
		return fmt.Errorf("metrics.retention must be positive")
	}
	if c.Media.MaxUploadMB <= 0 {
		return fmt.Errorf("media.max_upload_mb must be positive")
	}
	if smtp := c.Notify.SMTP; smtp.Host != "" && (smtp.From == "" || len(smtp.To) == 0) {
		return fmt.Errorf("notify.smtp needs from and to when host is set")
	}
	if _, err := c.HolidaySet(); err != nil {
		return err
	}
	return nil
}

// HolidaySet parses Holidays.
func (c *Config) HolidaySet() (bulk.HolidaySet, error) {
	set, err := bulk.ParseHolidays(c.Holidays)
	if err != nil {
		return nil, fmt.Errorf("holidays: %w", err)
	}
	return set, nil
}
