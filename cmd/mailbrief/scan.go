package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mailbrief/internal/digest"
	"mailbrief/internal/gmail"
	"mailbrief/internal/model"
	"mailbrief/internal/summarize"
	"mailbrief/internal/util"
)

var (
	scanJSON  bool
	scanLimit int64
	scanQuery string
)

// scanCmd prints the digest without the TUI
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the unread digest to stdout",
	Long: `Fetch unread mail, summarize it and print each message with its date
candidates. Authentication prompts go to stderr.

Examples:
  # Default query and limit from config.yaml
  mailbrief scan

  # Ten messages from one label, as JSON
  mailbrief scan --limit 10 --query "is:unread label:work" --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print JSON instead of text")
	scanCmd.Flags().Int64Var(&scanLimit, "limit", 0, "max messages (default from config)")
	scanCmd.Flags().StringVar(&scanQuery, "query", "", "Gmail search query (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	orch, err := e.orchestrator(ctx)
	if err != nil {
		return err
	}

	svcs, err := gmail.NewServices(ctx, configDir, e.log)
	if err != nil {
		return err
	}

	query, limit := e.cfg.Mail.Query, e.cfg.Mail.MaxResults
	if scanQuery != "" {
		query = scanQuery
	}
	if scanLimit > 0 {
		limit = scanLimit
	}
	fetch := func(ctx context.Context) ([]model.Mail, error) {
		return gmail.FetchUnread(ctx, svcs.Gmail, query, limit)
	}
	progress := func(p model.SummaryProgress) {
		e.log.Info().Int("done", p.Done).Int("total", p.Total).Msg("summarizing")
	}

	digests, err := digest.Run(ctx, fetch, orch, progress)
	if errors.Is(err, summarize.ErrNoAPIKey) {
		e.log.Warn().Msg("no API key set; run `mailbrief options` to add one")
	} else if err != nil {
		return err
	}

	if scanJSON {
		return writeDigestsJSON(cmd.OutOrStdout(), digests)
	}
	writeDigests(cmd.OutOrStdout(), digests)
	return nil
}

// writeDigests prints one block per digest.
func writeDigests(w io.Writer, digests []model.Digest) {
	if len(digests) == 0 {
		fmt.Fprintln(w, "No unread messages.")
		return
	}
	for i, d := range digests {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, d.Subject)
		fmt.Fprintf(w, "   From: %s", util.SenderName(d.From))
		if !d.Received.IsZero() {
			fmt.Fprintf(w, "  ·  %s", d.Received.Local().Format("Mon Jan 2 15:04"))
		}
		fmt.Fprintln(w)
		for _, line := range strings.Split(strings.TrimSpace(d.Summary), "\n") {
			fmt.Fprintf(w, "   %s\n", line)
		}
		if len(d.Candidates) > 0 {
			fmt.Fprintf(w, "   Dates: %s\n", strings.Join(d.Candidates, " | "))
		}
	}
}

type digestJSON struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Received   time.Time `json:"received,omitzero"`
	Summary    string    `json:"summary"`
	Candidates []string  `json:"candidates"`
	Link       string    `json:"link"`
}

func writeDigestsJSON(w io.Writer, digests []model.Digest) error {
	out := make([]digestJSON, len(digests))
	for i, d := range digests {
		cands := d.Candidates
		if cands == nil {
			cands = []string{}
		}
		out[i] = digestJSON{
			ID:         d.ID,
			From:       d.From,
			Subject:    d.Subject,
			Received:   d.Received,
			Summary:    d.Summary,
			Candidates: cands,
			Link:       gmail.MessageURL(d.ID),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
