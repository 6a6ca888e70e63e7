// Command mailbrief shows a summarized digest of unread Gmail with the
// dates and deadlines each message mentions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mailbrief/internal/config"
	"mailbrief/internal/logging"
	"mailbrief/internal/store"
	"mailbrief/internal/summarize"
	"mailbrief/internal/tui"
)

var (
	// configDir holds config.yaml, the OAuth files, the summary cache and the log
	configDir string
	debug     bool
	version   = "dev"
)

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mailbrief",
	Short: "Summarized digest of unread Gmail with deadline detection",
	Long: `mailbrief fetches your unread Gmail, summarizes each message and lists
the dates, times and deadlines it mentions. Pick a date to see where it was
found, mark mail read, or turn a date into a Google Calendar event.

Put the OAuth client secret from Google Cloud at <config-dir>/client_secret.json
before the first run.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultDir(), "directory for config, credentials, cache and log")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(extractCmd)
}

// env is what every command that talks to Gmail needs.
type env struct {
	cfg     *config.Config
	cfgPath string
	log     zerolog.Logger
	closers []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// setup loads config and opens the logger. console logs to stderr instead of
// the log file, for commands that do not own the terminal.
func setup(console bool) (*env, error) {
	e := &env{cfgPath: filepath.Join(configDir, "config.yaml")}

	if console {
		e.log = logging.Console(debug)
	} else {
		log, closer, err := logging.New(filepath.Join(configDir, "mailbrief.log"), debug)
		if err != nil {
			return nil, err
		}
		e.log = log
		e.closers = append(e.closers, closer)
	}

	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.cfg = cfg
	return e, nil
}

// orchestrator builds the summarizer from the stored API key and opens the
// summary cache. A cache that fails to open is logged and skipped.
func (e *env) orchestrator(ctx context.Context) (*summarize.Orchestrator, error) {
	apiKey := ""
	creds, err := config.OpenCredentials(configDir)
	if err != nil {
		e.log.Warn().Err(err).Msg("keyring unavailable")
		apiKey = os.Getenv(config.APIKeyEnv)
	} else {
		apiKey, err = creds.APIKey()
		if err != nil && !errors.Is(err, config.ErrNoCredential) {
			return nil, err
		}
	}

	sc := e.cfg.Summarizer
	backend, err := summarize.NewBackend(sc.Provider, apiKey, sc.Model, sc.BaseURL, e.log)
	if err != nil {
		return nil, err
	}

	var cache summarize.Cache
	db, err := store.NewSQLiteStore(filepath.Join(configDir, "summaries.db"))
	if err != nil {
		e.log.Warn().Err(err).Msg("summary cache disabled")
	} else {
		cache = db
		e.closers = append(e.closers, db)
		if n, err := db.CountSummaries(ctx); err == nil {
			e.log.Debug().Int("entries", n).Msg("summary cache opened")
		}
	}

	e.log.Debug().
		Str("provider", sc.Provider).
		Str("model", sc.Model).
		Bool("has_key", backend != nil).
		Bool("cache", cache != nil).
		Msg("summarizer configured")
	return summarize.NewOrchestrator(backend, cache, sc.Model, e.log), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	orch, err := e.orchestrator(cmd.Context())
	if err != nil {
		return err
	}

	appModel := tui.NewAppModel(tui.Options{
		ConfigDir:  configDir,
		ConfigPath: e.cfgPath,
		Config:     e.cfg,
		Summarizer: orch,
		Log:        e.log,
		Context:    cmd.Context(),
	})
	p := tea.NewProgram(&appModel, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	appModel.SetProgram(p)
	finalModel, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
		// Interrupted by signal.
		return nil
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	if m, ok := finalModel.(*tui.AppModel); ok && m.Err != nil {
		return m.Err
	}
	return nil
}
