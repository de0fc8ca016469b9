package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Secondary struct {
		Dir string `yaml:"dir"`
	} `yaml:"secondary"`
	DataSource struct {
		Provider  string        `yaml:"provider"`
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		RateLimit int           `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Router struct {
		Mode      string        `yaml:"mode"`
		StateFile string        `yaml:"state_file"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"router"`
	Series struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"series"`
	Compare struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"compare"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Benchmark string `yaml:"benchmark"`
	Proxy     string `yaml:"proxy"`
	LogLevel  string `yaml:"log_level"`
}

// Providers accepted in data_source.provider.
const (
	ProviderYahoo   = "yahoo"
	ProviderREST    = "rest"
	ProviderPrimary = "primary"
)

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SECONDARY_DIR"); v != "" {
		cfg.Secondary.Dir = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.RateLimit = n
		}
	}
	if v := os.Getenv("ROUTER_MODE"); v != "" {
		cfg.Router.Mode = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("BENCHMARK"); v != "" {
		cfg.Benchmark = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if cfg.Secondary.Dir == "" {
		cfg.Secondary.Dir = "data/profiles"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahoo
	}
	if cfg.DataSource.RateLimit == 0 {
		cfg.DataSource.RateLimit = 5
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Router.Mode == "" {
		cfg.Router.Mode = "primary"
	}
	if cfg.Router.StateFile == "" {
		cfg.Router.StateFile = "data/router_state.json"
	}
	if cfg.Router.Timeout == 0 {
		cfg.Router.Timeout = 5 * time.Second
	}
	if cfg.Series.Timeout == 0 {
		cfg.Series.Timeout = 5 * time.Second
	}
	if cfg.Compare.Timeout == 0 {
		cfg.Compare.Timeout = 20 * time.Second
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */15 * * * *"
	}
	if cfg.Benchmark == "" {
		cfg.Benchmark = "SPY"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.DataSource.Provider = strings.ToLower(strings.TrimSpace(cfg.DataSource.Provider))
	cfg.Benchmark = strings.ToUpper(strings.TrimSpace(cfg.Benchmark))
	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	case ProviderPrimary:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for the primary provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, primary", c.DataSource.Provider)
	}
	switch strings.ToLower(c.Router.Mode) {
	case "primary", "secondary":
	default:
		return fmt.Errorf("router.mode %q is not one of primary, secondary", c.Router.Mode)
	}
	if c.DataSource.RateLimit < 0 {
		return fmt.Errorf("data_source.rate_limit must not be negative")
	}
	if c.Secondary.Dir == "" {
		return fmt.Errorf("secondary.dir is required")
	}
	return nil
}
