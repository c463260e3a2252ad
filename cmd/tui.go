package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/btcplan/internal/config"
	"github.com/theirongolddev/btcplan/internal/logging"
	"github.com/theirongolddev/btcplan/internal/tui"
	"github.com/theirongolddev/btcplan/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	ccy, err := currency()
	if err != nil {
		return err
	}

	// The alt screen owns stdout and stderr, so log to a file.
	log, err := logging.File(filepath.Join(config.CacheDir(), "tui.log"), flagDebug || config.Debug())
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	in, _ := resolveFlagInput()

	opts := tui.Options{
		Input:           in,
		Currency:        ccy,
		RefreshInterval: appCfg.RefreshInterval(),
		Timeout:         appCfg.Timeout(),
		Offline:         flagOffline,
		NeedSetup:       !config.Exists(),
		Log:             log,
	}
	if !flagOffline {
		opts.Source = newSource()
	}
	if appCfg.Price.RecordHistory || flagOffline {
		opts.Quotes = openQuotes()
		if opts.Quotes != nil {
			defer func() { _ = opts.Quotes.Close() }()
		}
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
