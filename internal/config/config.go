// Package config loads and saves mailbrief settings and the summarizer API key.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SummarizerConfig selects the inference provider and model.
type SummarizerConfig struct {
	// Provider is "huggingface" or "openai".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Model is the provider model name, e.g. "facebook/bart-large-cnn".
	Model string `mapstructure:"model" yaml:"model"`

	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// MailConfig controls which messages a refresh fetches.
type MailConfig struct {
	MaxResults int64  `mapstructure:"max_results" yaml:"max_results"`
	Query      string `mapstructure:"query" yaml:"query"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	DarkMode bool `mapstructure:"dark_mode" yaml:"dark_mode"`
}

// Config is the top-level application configuration.
type Config struct {
	Summarizer SummarizerConfig `mapstructure:"summarizer" yaml:"summarizer"`
	Mail       MailConfig       `mapstructure:"mail" yaml:"mail"`
	Display    DisplayConfig    `mapstructure:"display" yaml:"display"`
}

// DefaultDir returns ~/.config/mailbrief, which also holds the OAuth client
// secret, the token cache, the summary database and the log file.
func DefaultDir() string {
	if d := os.Getenv("MAILBRIEF_CONFIG_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailbrief")
}

// DefaultPath returns the config file path inside DefaultDir.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Summarizer: SummarizerConfig{
			Provider: "huggingface",
			Model:    "facebook/bart-large-cnn",
		},
		Mail: MailConfig{
			MaxResults: 5,
			Query:      "is:unread",
		},
	}
}

// Load reads configuration from the given YAML file. A missing file yields
// Default().
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("summarizer.provider", def.Summarizer.Provider)
	v.SetDefault("summarizer.model", def.Summarizer.Model)
	v.SetDefault("summarizer.base_url", "")
	v.SetDefault("mail.max_results", def.Mail.MaxResults)
	v.SetDefault("mail.query", def.Mail.Query)
	v.SetDefault("display.dark_mode", false)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &pathErr) || errors.As(err, &notFound) {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = def.Summarizer.Model
	}
	if cfg.Mail.MaxResults <= 0 {
		cfg.Mail.MaxResults = def.Mail.MaxResults
	}
	if cfg.Mail.Query == "" {
		cfg.Mail.Query = def.Mail.Query
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("summarizer.provider", cfg.Summarizer.Provider)
	v.Set("summarizer.model", cfg.Summarizer.Model)
	v.Set("summarizer.base_url", cfg.Summarizer.BaseURL)
	v.Set("mail.max_results", cfg.Mail.MaxResults)
	v.Set("mail.query", cfg.Mail.Query)
	v.Set("display.dark_mode", cfg.Display.DarkMode)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
