package cmd

import (
	"fmt"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Cache dir:   %s\n", config.CacheDir())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"  Default currency", cfg.General.DefaultCurrency},
		{"  Locale", cfg.General.Locale},
	}))
	fmt.Println()

	apiKey := "not configured"
	if cfg.Price.APIKey != "" {
		apiKey = maskAPIKey(cfg.Price.APIKey)
	}
	fmt.Println("  [Price]")
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"  Provider", cfg.Price.ProviderURL},
		{"  API key", apiKey},
		{"  Refresh", cfg.RefreshInterval().String()},
		{"  Timeout", cfg.Timeout().String()},
		{"  Record history", fmt.Sprintf("%v", cfg.Price.RecordHistory)},
	}))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"  Address", cfg.Daemon.Addr},
		{"  Events buffer", cli.FormatNumber(int64(cfg.Daemon.EventsBuffer))},
	}))
	fmt.Println()

	fmt.Println("  Run `btcplan setup` to reconfigure.")
	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
