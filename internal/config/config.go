package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"go-tickets-dashboard/internal/model"
	"go-tickets-dashboard/pkg/utils"
)

// DefaultSourceURL is the spreadsheet the dashboard reads out of the box
const DefaultSourceURL = "https://raw.githubusercontent.com/Beingjn/Streamlit_Chatbot_Example/main/new_categories1.xlsx"

// Config holds all dashboard configuration.
type Config struct {
	// Spreadsheet source
	Source SourceConfig `yaml:"source"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Caching
	Cache CacheConfig `yaml:"cache"`

	// Load history
	History HistoryConfig `yaml:"history"`

	// Export
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig configures where and how the spreadsheet is fetched.
type SourceConfig struct {
	URL          string        `yaml:"url"`
	Variant      model.Variant `yaml:"variant"`       // tickets, complaints
	FetchTimeout string        `yaml:"fetch_timeout"` // e.g. "15s"
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	PreviewRows int    `yaml:"preview_rows"`
	ChartWidth  int    `yaml:"chart_width"`
	ChartHeight int    `yaml:"chart_height"`
}

// CacheConfig configures the table cache and the optional redis blob cache.
type CacheConfig struct {
	TTL      string `yaml:"ttl"` // empty = keep until invalidated
	RedisURL string `yaml:"redis_url"`
	RedisTTL string `yaml:"redis_ttl"`
	Prefix   string `yaml:"redis_prefix"`
}

// HistoryConfig configures the sqlite load history; empty path disables it.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ExportConfig configures summary exports.
type ExportConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:          DefaultSourceURL,
			Variant:      model.VariantTickets,
			FetchTimeout: "15s",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			PreviewRows: 5,
			ChartWidth:  512,
			ChartHeight: 512,
		},
		Cache: CacheConfig{
			Prefix: "dashboard:blob:",
		},
		Export: ExportConfig{
			Dir:     "outputs",
			Formats: []string{"csv", "json"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config over the defaults. A missing file is not an
// error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DASHBOARD_SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("DASHBOARD_VARIANT"); v != "" {
		c.Source.Variant = model.Variant(v)
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("DASHBOARD_HISTORY_DB"); v != "" {
		c.History.DatabasePath = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects configurations the dashboard cannot run with
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if c.Source.Variant == "" {
		c.Source.Variant = model.VariantTickets
	}
	if !c.Source.Variant.Valid() {
		return fmt.Errorf("unknown source.variant %q", c.Source.Variant)
	}
	return nil
}

// FetchTimeout returns the parsed fetch deadline (15s when unset)
func (c *Config) FetchTimeout() time.Duration {
	return utils.ParseDuration(c.Source.FetchTimeout, 15*time.Second)
}

// CacheTTL returns the table cache TTL, 0 meaning no expiry
func (c *Config) CacheTTL() time.Duration {
	return utils.ParseDuration(c.Cache.TTL, 0)
}

// RedisTTL returns the blob TTL, 0 meaning no expiry
func (c *Config) RedisTTL() time.Duration {
	return utils.ParseDuration(c.Cache.RedisTTL, 0)
}
