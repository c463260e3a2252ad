// Package config loads and saves btcplan settings.
//
// Settings live in a TOML file; a few environment variables override them.
// Projection inputs are never stored here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/theirongolddev/btcplan/internal/model"
)

const (
	appName = "btcplan"

	// DefaultProviderURL is the CoinGecko public API base.
	DefaultProviderURL = "https://api.coingecko.com/api/v3"

	defaultRefreshSec = 60
	minRefreshSec     = 10
	defaultTimeoutSec = 10
)

// Config holds all btcplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Price      PriceConfig      `toml:"price"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultCurrency string `toml:"default_currency"`
	Locale          string `toml:"locale"`
}

// PriceConfig controls the live price feed.
type PriceConfig struct {
	ProviderURL        string `toml:"provider_url"`
	APIKey             string `toml:"api_key,omitempty"`
	RefreshIntervalSec int    `toml:"refresh_interval_sec"`
	TimeoutSec         int    `toml:"timeout_sec"`
	RecordHistory      bool   `toml:"record_history"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds price watch daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// envOverrides is parsed from the process environment and layered on top of
// the file. Empty values leave the file setting alone.
type envOverrides struct {
	Currency    string `env:"BTCPLAN_CURRENCY"`
	Locale      string `env:"BTCPLAN_LOCALE"`
	ProviderURL string `env:"BTCPLAN_PRICE_URL"`
	APIKey      string `env:"COINGECKO_API_KEY"`
	Theme       string `env:"BTCPLAN_THEME"`
	RefreshSec  int    `env:"BTCPLAN_REFRESH_SEC"`
	Debug       bool   `env:"BTCPLAN_DEBUG"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultCurrency: model.DefaultCurrency,
			Locale:          "en-US",
		},
		Price: PriceConfig{
			ProviderURL:        DefaultProviderURL,
			RefreshIntervalSec: defaultRefreshSec,
			TimeoutSec:         defaultTimeoutSec,
			RecordHistory:      true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8799",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the directory for the quote store, logs and pid files.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", appName)
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied in both cases.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg.normalized(), fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg.normalized(), fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg.normalized(), err
	}
	return cfg.normalized(), nil
}

// LoadOrDefault loads config, returning defaults (with env applied) on error.
func LoadOrDefault() Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
		_ = applyEnv(&cfg)
		return cfg.normalized()
	}
	return cfg
}

// Debug reports whether BTCPLAN_DEBUG is set to a true value.
func Debug() bool {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return false
	}
	return o.Debug
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	if o.Currency != "" {
		cfg.General.DefaultCurrency = o.Currency
	}
	if o.Locale != "" {
		cfg.General.Locale = o.Locale
	}
	if o.ProviderURL != "" {
		cfg.Price.ProviderURL = o.ProviderURL
	}
	if o.APIKey != "" {
		cfg.Price.APIKey = o.APIKey
	}
	if o.Theme != "" {
		cfg.Appearance.Theme = o.Theme
	}
	if o.RefreshSec > 0 {
		cfg.Price.RefreshIntervalSec = o.RefreshSec
	}
	return nil
}

// normalized fills gaps left by partial files and clamps intervals.
func (c Config) normalized() Config {
	def := DefaultConfig()
	c.General.DefaultCurrency = model.NormalizeCurrency(c.General.DefaultCurrency)
	if c.General.Locale == "" {
		c.General.Locale = def.General.Locale
	}
	c.Price.ProviderURL = strings.TrimRight(strings.TrimSpace(c.Price.ProviderURL), "/")
	if c.Price.ProviderURL == "" {
		c.Price.ProviderURL = def.Price.ProviderURL
	}
	if c.Price.RefreshIntervalSec <= 0 {
		c.Price.RefreshIntervalSec = defaultRefreshSec
	} else if c.Price.RefreshIntervalSec < minRefreshSec {
		c.Price.RefreshIntervalSec = minRefreshSec
	}
	if c.Price.TimeoutSec <= 0 {
		c.Price.TimeoutSec = defaultTimeoutSec
	}
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = def.Appearance.Theme
	}
	if c.Daemon.Addr == "" {
		c.Daemon.Addr = def.Daemon.Addr
	}
	if c.Daemon.EventsBuffer < 1 {
		c.Daemon.EventsBuffer = def.Daemon.EventsBuffer
	}
	return c
}

// RefreshInterval is the price refresh period.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Price.RefreshIntervalSec) * time.Second
}

// Timeout is the per-request price fetch timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Price.TimeoutSec) * time.Second
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
