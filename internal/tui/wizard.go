package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"chunkscribe/internal/config"
	"chunkscribe/internal/provider"
)

// Result carries the outcome of a configure run.
type Result struct {
	Config    *config.Config
	Cancelled bool
}

var providerDisplayNames = map[string]string{
	"gemini": "Google Gemini",
	"openai": "OpenAI",
}

func providerDisplayName(name string) string {
	if display, ok := providerDisplayNames[name]; ok {
		return display
	}
	return name
}

// maskAPIKey returns a masked version of an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// Run walks the user through provider, API key, model and tuning choices,
// mutating cfg in place. A ctrl+c or esc at any step returns Cancelled.
func Run(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	steps := []func(*config.Config) error{
		selectProvider,
		inputAPIKey,
		selectModel,
		inputLanguage,
		inputDispatch,
	}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return &Result{Cancelled: true}, nil
			}
			return nil, err
		}
	}

	return &Result{Config: cfg}, nil
}

func selectProvider(cfg *config.Config) error {
	var options []huh.Option[string]
	for _, name := range provider.ListProviders() {
		label := providerDisplayName(name)
		if cfg.APIKeyFor(name) != "" {
			label += " (configured)"
		}
		options = append(options, huh.NewOption(label, name))
	}

	selected := cfg.Transcription.Provider
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Provider").
				Description("Which service should transcribe your audio?").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}

	if selected != cfg.Transcription.Provider {
		// model belongs to the old provider, reset to the new default
		cfg.Transcription.Provider = selected
		cfg.Transcription.Model = ""
	}
	return nil
}

func inputAPIKey(cfg *config.Config) error {
	name := cfg.Transcription.Provider
	p := provider.GetProvider(name)
	if p == nil || !p.RequiresAPIKey() {
		return nil
	}

	existing := cfg.APIKeyFor(name)
	if existing != "" {
		var update bool
		confirm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s API Key", providerDisplayName(name))).
					Description(fmt.Sprintf("Current: %s", maskAPIKey(existing))).
					Affirmative("Update key").
					Negative("Keep current").
					Value(&update),
			),
		).WithTheme(huh.ThemeCharm())

		if err := confirm.Run(); err != nil {
			return err
		}
		if !update {
			return nil
		}
	}

	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", providerDisplayName(name))).
				Description(fmt.Sprintf("Also read from the %s_API_KEY environment variable", strings.ToUpper(name))).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s == "" {
						return nil // keep using the env var
					}
					if !p.ValidateAPIKey(s) {
						return fmt.Errorf("that does not look like a %s key", providerDisplayName(name))
					}
					return nil
				}).
				Value(&key),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}

	if key != "" {
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]config.ProviderConfig)
		}
		cfg.Providers[name] = config.ProviderConfig{APIKey: key}
	}
	return nil
}

func selectModel(cfg *config.Config) error {
	p := provider.GetProvider(cfg.Transcription.Provider)
	if p == nil {
		return fmt.Errorf("unknown provider: %s", cfg.Transcription.Provider)
	}

	var options []huh.Option[string]
	for _, m := range p.Models() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s - %s", m.Name, m.Description), m.ID))
	}

	selected := cfg.Transcription.Model
	if selected == "" {
		selected = p.DefaultModel()
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Model = selected
	return nil
}

func inputLanguage(cfg *config.Config) error {
	lang := cfg.Transcription.Language
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Language").
				Description("ISO 639-1 code like \"en\" or \"it\", empty for auto-detect").
				Validate(func(s string) error {
					if s != "" && !config.IsValidLanguageCode(s) {
						return fmt.Errorf("unknown language code: %s", s)
					}
					return nil
				}).
				Value(&lang),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Language = lang
	return nil
}

func inputDispatch(cfg *config.Config) error {
	workers := fmt.Sprintf("%d", cfg.Dispatch.Workers)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Parallel workers").
				Description("How many chunks to transcribe at once").
				Validate(func(s string) error {
					var n int
					if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 {
						return fmt.Errorf("enter a number of 1 or more")
					}
					return nil
				}).
				Value(&workers),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}

	fmt.Sscanf(workers, "%d", &cfg.Dispatch.Workers)
	return nil
}
