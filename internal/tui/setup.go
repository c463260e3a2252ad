package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/theirongolddev/btcplan/internal/config"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"golang.org/x/text/language"
)

// refreshChoices are the refresh intervals offered by the setup wizard, in seconds.
var refreshChoices = []int{30, 60, 120, 300}

// SetupValues holds the answers collected by the first-run setup wizard.
type SetupValues struct {
	Currency   string
	Theme      string
	Locale     string
	RefreshSec int
	APIKey     string
}

// DefaultSetupValues seeds the wizard from an existing configuration.
func DefaultSetupValues(cfg config.Config) *SetupValues {
	v := &SetupValues{
		Currency:   model.NormalizeCurrency(cfg.General.DefaultCurrency),
		Theme:      cfg.Appearance.Theme,
		Locale:     cfg.General.Locale,
		RefreshSec: cfg.Price.RefreshIntervalSec,
		APIKey:     cfg.Price.APIKey,
	}
	if !slices.Contains(theme.Names(), v.Theme) {
		v.Theme = theme.FlexokiDark.Name
	}
	if !slices.Contains(refreshChoices, v.RefreshSec) {
		v.RefreshSec = 60
	}
	return v
}

// NewSetupForm builds the setup wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	currencies := make([]huh.Option[string], 0, len(model.Currencies))
	for _, c := range model.Currencies {
		currencies = append(currencies, huh.NewOption(c, c))
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}
	refresh := make([]huh.Option[int], 0, len(refreshChoices))
	for _, s := range refreshChoices {
		refresh = append(refresh, huh.NewOption(fmt.Sprintf("every %ds", s), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to btcplan").
				Description("Project a bitcoin holding forward ten years.\nA few settings first; run `btcplan setup` to change them later."),
			huh.NewSelect[string]().
				Title("Display currency").
				Options(currencies...).
				Value(&vals.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Price refresh").
				Options(refresh...).
				Value(&vals.RefreshSec),
			huh.NewInput().
				Title("Number locale").
				Description("BCP 47 tag used for digit grouping, e.g. en-US or de-DE. Empty keeps the default.").
				Value(&vals.Locale).
				Validate(validateLocale),
			huh.NewInput().
				Title("CoinGecko API key").
				Description("Optional demo key; leave empty to use the public endpoint.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.APIKey),
		),
	).WithShowHelp(true)
}

func validateLocale(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := language.Parse(s); err != nil {
		return fmt.Errorf("unknown locale %q", s)
	}
	return nil
}

// Apply copies the wizard answers into cfg.
func (v *SetupValues) Apply(cfg *config.Config) {
	cfg.General.DefaultCurrency = model.NormalizeCurrency(v.Currency)
	cfg.General.Locale = strings.TrimSpace(v.Locale)
	cfg.Appearance.Theme = v.Theme
	if v.RefreshSec > 0 {
		cfg.Price.RefreshIntervalSec = v.RefreshSec
	}
	cfg.Price.APIKey = strings.TrimSpace(v.APIKey)
}
