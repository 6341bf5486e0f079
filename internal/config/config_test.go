package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "archive.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const validConfigYAML = `
archive:
  data_dir: "./records"
  fixed_dir: "fixed"
  pattern: "*/*.json"
  output: "./site/index.html"
  title: "Archive"
  articles_per_page: 20
  background: "ivory"
search:
  results_per_page: 8
  preview_length: 40
  privileged_authors: ["andy"]
  site_domain: "example.org"
  converter: "none"
server:
  addr: "127.0.0.1:9090"
  read_timeout_sec: 5
  write_timeout_sec: 15
logging:
  level: "debug"
features:
  strict_ingest: true
  sign_output: false
`

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Archive.DataDir != "./records" {
		t.Errorf("Expected data dir './records', got '%s'", cfg.Archive.DataDir)
	}

	if cfg.Archive.ArticlesPerPage != 20 {
		t.Errorf("Expected 20 articles per page, got %d", cfg.Archive.ArticlesPerPage)
	}

	if cfg.Search.Converter != "none" {
		t.Errorf("Expected converter 'none', got '%s'", cfg.Search.Converter)
	}

	if len(cfg.Search.PrivilegedAuthors) != 1 || cfg.Search.PrivilegedAuthors[0] != "andy" {
		t.Errorf("Unexpected privileged authors: %v", cfg.Search.PrivilegedAuthors)
	}

	if !cfg.Features.StrictIngest || cfg.Features.SignOutput {
		t.Errorf("Unexpected features: %+v", cfg.Features)
	}

	if cfg.Server.ReadTimeout() != 5*time.Second {
		t.Errorf("Expected 5s read timeout, got %v", cfg.Server.ReadTimeout())
	}

	if cfg.Server.WriteTimeout() != 15*time.Second {
		t.Errorf("Expected 15s write timeout, got %v", cfg.Server.WriteTimeout())
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, "archive:\n  data_dir: \"./other\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Archive.DataDir != "./other" {
		t.Errorf("Expected data dir './other', got '%s'", cfg.Archive.DataDir)
	}

	if cfg.Search.ResultsPerPage != 5 {
		t.Errorf("Expected default results per page 5, got %d", cfg.Search.ResultsPerPage)
	}

	if cfg.Search.PreviewLength != 60 {
		t.Errorf("Expected default preview length 60, got %d", cfg.Search.PreviewLength)
	}

	if cfg.Archive.ArticlesPerPage != 10 {
		t.Errorf("Expected default articles per page 10, got %d", cfg.Archive.ArticlesPerPage)
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Search.SiteDomain != "andylee.pro" {
		t.Errorf("Expected default site domain, got '%s'", cfg.Search.SiteDomain)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ARCHIVE_DATA_DIR", "/srv/records")
	t.Setenv("ARCHIVE_LOG_LEVEL", "warn")
	t.Setenv("ARCHIVE_PRIVILEGED_AUTHORS", "andy,李宗恩,guest")

	cfg, err := LoadConfig(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Archive.DataDir != "/srv/records" {
		t.Errorf("Expected env data dir, got '%s'", cfg.Archive.DataDir)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected env log level 'warn', got '%s'", cfg.Logging.Level)
	}

	if len(cfg.Search.PrivilegedAuthors) != 3 {
		t.Errorf("Expected 3 privileged authors, got %v", cfg.Search.PrivilegedAuthors)
	}

	// Values without an environment variable keep the file value.
	if cfg.Archive.ArticlesPerPage != 20 {
		t.Errorf("Expected file value 20, got %d", cfg.Archive.ArticlesPerPage)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/archive.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(createTempConfigFile(t, "archive: [unclosed"))
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"missing data dir", func(c *Config) { c.Archive.DataDir = "" }, ErrMissingDataDir},
		{"missing output", func(c *Config) { c.Archive.Output = "" }, ErrMissingOutputPath},
		{"missing pattern", func(c *Config) { c.Archive.Pattern = "" }, ErrMissingPattern},
		{"article page size", func(c *Config) { c.Archive.ArticlesPerPage = 0 }, ErrInvalidArticlePageSize},
		{"result page size", func(c *Config) { c.Search.ResultsPerPage = -1 }, ErrInvalidResultPageSize},
		{"preview length", func(c *Config) { c.Search.PreviewLength = 0 }, ErrInvalidPreviewLength},
		{"converter", func(c *Config) { c.Search.Converter = "google" }, ErrInvalidConverter},
		{"addr", func(c *Config) { c.Server.Addr = "8080" }, ErrInvalidAddr},
		{"timeout", func(c *Config) { c.Server.ReadTimeoutSec = 0 }, ErrInvalidTimeout},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"session store", func(c *Config) { c.Server.Sessions = "disk" }, ErrInvalidSessionStore},
		{"redis without url", func(c *Config) { c.Server.Sessions = "redis" }, ErrMissingRedisURL},
		{"redis with url", func(c *Config) { c.Server.Sessions = "redis"; c.Server.RedisURL = "redis://localhost:6379/0" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.Archive.Title = "Saved"
	cfg.Search.PrivilegedAuthors = []string{"andy", "bob"}

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Archive.Title != "Saved" {
		t.Errorf("Expected title 'Saved', got '%s'", loaded.Archive.Title)
	}

	if len(loaded.Search.PrivilegedAuthors) != 2 {
		t.Errorf("Expected 2 privileged authors, got %v", loaded.Search.PrivilegedAuthors)
	}
}

func TestString(t *testing.T) {
	want := "Config{DataDir: data, Output: index.html, Converter: opencc, Addr: :8080}"
	if got := Default().String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
