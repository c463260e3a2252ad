package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{
		"BTCPLAN_CURRENCY", "BTCPLAN_LOCALE", "BTCPLAN_PRICE_URL",
		"COINGECKO_API_KEY", "BTCPLAN_THEME", "BTCPLAN_REFRESH_SEC", "BTCPLAN_DEBUG",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DefaultCurrency != "USD" {
		t.Fatalf("DefaultCurrency = %q, want USD", cfg.General.DefaultCurrency)
	}
	if cfg.RefreshInterval() != 60*time.Second {
		t.Fatalf("RefreshInterval = %v, want 60s", cfg.RefreshInterval())
	}
	if Exists() {
		t.Fatal("Exists() = true before any Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.General.DefaultCurrency = "EUR"
	cfg.Appearance.Theme = "tokyo-night"
	cfg.Price.RefreshIntervalSec = 120
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(Path())
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DefaultCurrency != "EUR" || got.Appearance.Theme != "tokyo-night" {
		t.Fatalf("round trip lost values: %+v", got)
	}
	if got.RefreshInterval() != 2*time.Minute {
		t.Fatalf("RefreshInterval = %v, want 2m", got.RefreshInterval())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.General.DefaultCurrency = "EUR"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BTCPLAN_CURRENCY", "gbp")
	t.Setenv("BTCPLAN_PRICE_URL", "http://127.0.0.1:9999/api/")
	t.Setenv("BTCPLAN_REFRESH_SEC", "3")

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DefaultCurrency != "GBP" {
		t.Fatalf("DefaultCurrency = %q, want GBP", got.General.DefaultCurrency)
	}
	if got.Price.ProviderURL != "http://127.0.0.1:9999/api" {
		t.Fatalf("ProviderURL = %q, want trailing slash trimmed", got.Price.ProviderURL)
	}
	if got.Price.RefreshIntervalSec != minRefreshSec {
		t.Fatalf("RefreshIntervalSec = %d, want clamp to %d", got.Price.RefreshIntervalSec, minRefreshSec)
	}
}

func TestLoad_UnknownCurrencyFallsBack(t *testing.T) {
	isolate(t)
	t.Setenv("BTCPLAN_CURRENCY", "XYZ")

	cfg := LoadOrDefault()
	if cfg.General.DefaultCurrency != "USD" {
		t.Fatalf("DefaultCurrency = %q, want USD fallback", cfg.General.DefaultCurrency)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	isolate(t)
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(), []byte("[general\nbroken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
	if cfg := LoadOrDefault(); cfg.General.DefaultCurrency != "USD" {
		t.Fatalf("LoadOrDefault currency = %q, want USD", cfg.General.DefaultCurrency)
	}
}
