// Package config provides configuration management for the archive tools.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingDataDir         = errors.New("archive.data_dir is required")
	ErrMissingOutputPath      = errors.New("archive.output is required")
	ErrMissingPattern         = errors.New("archive.pattern is required")
	ErrInvalidArticlePageSize = errors.New("archive.articles_per_page must be at least 1")
	ErrInvalidResultPageSize  = errors.New("search.results_per_page must be at least 1")
	ErrInvalidPreviewLength   = errors.New("search.preview_length must be at least 1")
	ErrInvalidConverter       = errors.New("search.converter must be 'opencc' or 'none'")
	ErrInvalidAddr            = errors.New("server.addr must be host:port")
	ErrInvalidTimeout         = errors.New("server timeouts must be at least 1 second")
	ErrInvalidSessionStore    = errors.New("server.sessions must be 'memory' or 'redis'")
	ErrMissingRedisURL        = errors.New("server.redis_url is required for redis sessions")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete archive configuration.
type Config struct {
	Archive  ArchiveConfig  `yaml:"archive"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Features FeaturesConfig `yaml:"features"`
}

// ArchiveConfig describes where records come from and where the document goes.
type ArchiveConfig struct {
	DataDir         string `yaml:"data_dir" env:"ARCHIVE_DATA_DIR"`
	FixedDir        string `yaml:"fixed_dir" env:"ARCHIVE_FIXED_DIR"`
	Pattern         string `yaml:"pattern" env:"ARCHIVE_PATTERN"`
	Output          string `yaml:"output" env:"ARCHIVE_OUTPUT"`
	Title           string `yaml:"title" env:"ARCHIVE_TITLE"`
	ArticlesPerPage int    `yaml:"articles_per_page" env:"ARCHIVE_ARTICLES_PER_PAGE"`
	Background      string `yaml:"background" env:"ARCHIVE_BACKGROUND"`
	SessionFile     string `yaml:"session_file" env:"ARCHIVE_SESSION_FILE"`
}

// SearchConfig tunes keyword search and result paging.
type SearchConfig struct {
	ResultsPerPage    int      `yaml:"results_per_page" env:"ARCHIVE_RESULTS_PER_PAGE"`
	PreviewLength     int      `yaml:"preview_length" env:"ARCHIVE_PREVIEW_LENGTH"`
	PrivilegedAuthors []string `yaml:"privileged_authors" env:"ARCHIVE_PRIVILEGED_AUTHORS" env-separator:","`
	SiteDomain        string   `yaml:"site_domain" env:"ARCHIVE_SITE_DOMAIN"`
	Converter         string   `yaml:"converter" env:"ARCHIVE_CONVERTER"`
}

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Addr            string `yaml:"addr" env:"ARCHIVE_ADDR"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" env:"ARCHIVE_READ_TIMEOUT_SEC"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" env:"ARCHIVE_WRITE_TIMEOUT_SEC"`
	// Sessions selects where reader sessions live: "memory" or "redis".
	Sessions        string `yaml:"sessions" env:"ARCHIVE_SESSIONS"`
	RedisURL        string `yaml:"redis_url" env:"ARCHIVE_REDIS_URL"`
	SessionTTLHours int    `yaml:"session_ttl_hours" env:"ARCHIVE_SESSION_TTL_HOURS"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level" env:"ARCHIVE_LOG_LEVEL"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	StrictIngest bool `yaml:"strict_ingest" env:"ARCHIVE_STRICT_INGEST"`
	Watch        bool `yaml:"watch" env:"ARCHIVE_WATCH"`
	SignOutput   bool `yaml:"sign_output" env:"ARCHIVE_SIGN_OUTPUT"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Archive: ArchiveConfig{
			DataDir:         "data",
			FixedDir:        "fixed",
			Pattern:         "*/*.json",
			Output:          "index.html",
			Title:           "评论存档",
			ArticlesPerPage: 10,
			Background:      "white",
			SessionFile:     ".archive/session.json",
		},
		Search: SearchConfig{
			ResultsPerPage:    5,
			PreviewLength:     60,
			PrivilegedAuthors: []string{"andy", "李宗恩"},
			SiteDomain:        "andylee.pro",
			Converter:         "opencc",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeoutSec:  10,
			WriteTimeoutSec: 10,
			Sessions:        "memory",
			SessionTTLHours: 168,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Features: FeaturesConfig{
			SignOutput: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults and
// applies environment overrides. An empty path skips the file.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Archive.DataDir == "" {
		return ErrMissingDataDir
	}

	if c.Archive.Output == "" {
		return ErrMissingOutputPath
	}

	if c.Archive.Pattern == "" {
		return ErrMissingPattern
	}

	if c.Archive.ArticlesPerPage < 1 {
		return ErrInvalidArticlePageSize
	}

	if c.Search.ResultsPerPage < 1 {
		return ErrInvalidResultPageSize
	}

	if c.Search.PreviewLength < 1 {
		return ErrInvalidPreviewLength
	}

	if c.Search.Converter != "opencc" && c.Search.Converter != "none" {
		return ErrInvalidConverter
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddr, err)
	}

	if c.Server.ReadTimeoutSec < 1 || c.Server.WriteTimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	switch c.Server.Sessions {
	case "memory":
	case "redis":
		if c.Server.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return ErrInvalidSessionStore
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// ReadTimeout returns the server read timeout.
func (s *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the server write timeout.
func (s *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// SessionTTL returns how long an idle redis session is kept.
func (s *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLHours) * time.Hour
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DataDir: %s, Output: %s, Converter: %s, Addr: %s}",
		c.Archive.DataDir,
		c.Archive.Output,
		c.Search.Converter,
		c.Server.Addr,
	)
}
