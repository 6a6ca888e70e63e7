// Package digest runs one refresh: fetch unread mail, summarize it, and find
// deadline candidates in each message.
package digest

import (
	"context"
	"errors"

	"mailbrief/internal/deadline"
	"mailbrief/internal/model"
	"mailbrief/internal/summarize"
)

// FetchFunc returns the mail a refresh works on.
type FetchFunc func(ctx context.Context) ([]model.Mail, error)

// Build pairs mail with summaries by position and extracts candidates from
// summary, body and snippet. A missing summary is treated as "".
func Build(mails []model.Mail, summaries []string) []model.Digest {
	out := make([]model.Digest, len(mails))
	for i, m := range mails {
		d := model.Digest{Mail: m}
		if i < len(summaries) {
			d.Summary = summaries[i]
		}
		d.Candidates = deadline.ExtractCandidates(d.ExtractionText())
		out[i] = d
	}
	return out
}

// Run fetches, summarizes and builds the digests. A missing API key is not
// fatal: the digests carry placeholders and summarize.ErrNoAPIKey is returned
// alongside them. A fetch failure aborts with no digests.
func Run(ctx context.Context, fetch FetchFunc, orch *summarize.Orchestrator, progress func(model.SummaryProgress)) ([]model.Digest, error) {
	mails, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := orch.SummarizeAll(ctx, mails, progress)
	if err != nil && !errors.Is(err, summarize.ErrNoAPIKey) {
		return nil, err
	}
	return Build(mails, summaries), err
}
