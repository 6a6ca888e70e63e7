package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"mailbrief/internal/config"
	"mailbrief/internal/summarize"
)

const (
	actionSave  = "save"
	actionClear = "clear"
)

// optionsCmd edits the summarizer settings
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Set the summarizer API key and model",
	Long: `Open a form to set the summarization provider, model and API key.
The key is kept in the system keyring; leave it blank to keep the stored one.
Choosing Clear removes the key and resets the model to the default.`,
	Args: cobra.NoArgs,
	RunE: runOptions,
}

// optionsValues backs the form fields.
type optionsValues struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Action   string
}

func optionsForm(v *optionsValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Options(
					huh.NewOption("Hugging Face Inference API", summarize.ProviderHuggingFace),
					huh.NewOption("OpenAI-compatible chat API", summarize.ProviderOpenAI),
				).
				Value(&v.Provider),
			huh.NewInput().
				Title("Model").
				Description("e.g. facebook/bart-large-cnn, google/flan-t5-large, gpt-4o-mini").
				Placeholder(summarize.DefaultModel).
				Value(&v.Model),
			huh.NewInput().
				Title("Base URL").
				Description("Optional endpoint override; blank uses the provider default").
				Value(&v.BaseURL),
			huh.NewInput().
				Title("API key").
				Description("Blank keeps the stored key").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey),
			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("Save", actionSave),
					huh.NewOption("Clear key and reset model", actionClear),
				).
				Value(&v.Action),
		),
	)
}

// applyOptions stores the form result and returns a one-line report.
func applyOptions(v optionsValues, cfg *config.Config, cfgPath string, creds *config.Credentials) (string, error) {
	if v.Action == actionClear {
		if err := creds.ClearAPIKey(); err != nil {
			return "", err
		}
		cfg.Summarizer = config.Default().Summarizer
		if err := config.Save(cfgPath, cfg); err != nil {
			return "", err
		}
		return "Cleared API key; model reset to " + cfg.Summarizer.Model, nil
	}

	if key := strings.TrimSpace(v.APIKey); key != "" {
		if err := creds.SetAPIKey(key); err != nil {
			return "", err
		}
	}
	cfg.Summarizer.Provider = v.Provider
	cfg.Summarizer.Model = strings.TrimSpace(v.Model)
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = summarize.DefaultModel
	}
	cfg.Summarizer.BaseURL = strings.TrimSpace(v.BaseURL)
	if err := config.Save(cfgPath, cfg); err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved: %s / %s", cfg.Summarizer.Provider, cfg.Summarizer.Model), nil
}

func runOptions(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	creds, err := config.OpenCredentials(configDir)
	if err != nil {
		return err
	}

	v := optionsValues{
		Provider: e.cfg.Summarizer.Provider,
		Model:    e.cfg.Summarizer.Model,
		BaseURL:  e.cfg.Summarizer.BaseURL,
		Action:   actionSave,
	}
	if err := optionsForm(&v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("options form: %w", err)
	}

	msg, err := applyOptions(v, e.cfg, e.cfgPath, creds)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
