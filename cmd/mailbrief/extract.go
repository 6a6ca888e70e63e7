package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mailbrief/internal/deadline"
)

var extractContext bool

// extractCmd runs the candidate extractor over text from a file or stdin
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "List date and deadline candidates found in text",
	Long: `Read text from a file or stdin and print each date, time or deadline
candidate on its own line, in the order the digest would show them.

Examples:
  # From a saved message
  mailbrief extract message.txt

  # From stdin, with the surrounding text for each candidate
  pbpaste | mailbrief extract --context -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractContext, "context", false, "print the text around each candidate")
}

func runExtract(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	text := string(data)

	out := cmd.OutOrStdout()
	for _, c := range deadline.ExtractCandidates(text) {
		if !extractContext {
			fmt.Fprintln(out, c)
			continue
		}
		ctx := deadline.LocateContext("", text, "", c)
		if ctx == "" {
			ctx = deadline.NoContext
		}
		fmt.Fprintf(out, "%s\n    %s\n", c, ctx)
	}
	return nil
}
