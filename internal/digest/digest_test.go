package digest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbrief/internal/model"
	"mailbrief/internal/summarize"
)

type staticSummarizer string

func (s staticSummarizer) Summarize(context.Context, model.Mail) (string, error) {
	return string(s), nil
}

func fixedFetch(mails ...model.Mail) FetchFunc {
	return func(context.Context) ([]model.Mail, error) { return mails, nil }
}

func TestBuildExtractsFromAllSources(t *testing.T) {
	mails := []model.Mail{
		{ID: "1", Body: "Review due 2024-05-01.", Snippet: "reply by tomorrow"},
		{ID: "2"},
	}
	got := Build(mails, []string{"Meeting at 10:00"})
	require.Len(t, got, 2)
	// Candidates follow pass order, not position in the text.
	assert.Equal(t, []string{"2024-05-01", "10:00", "tomorrow"}, got[0].Candidates)
	assert.Equal(t, "Meeting at 10:00", got[0].Summary)
	assert.Empty(t, got[1].Summary)
	assert.Empty(t, got[1].Candidates)
}

func TestRunNoAPIKeyStillBuilds(t *testing.T) {
	orch := summarize.NewOrchestrator(nil, nil, "", zerolog.Nop())
	got, err := Run(context.Background(), fixedFetch(model.Mail{ID: "1", Snippet: "Call at 3 PM"}), orch, nil)
	require.ErrorIs(t, err, summarize.ErrNoAPIKey)
	require.Len(t, got, 1)
	assert.Equal(t, summarize.NoAPIKey, got[0].Summary)
	assert.Equal(t, []string{"3 PM"}, got[0].Candidates)
}

func TestRunWithSummaries(t *testing.T) {
	orch := summarize.NewOrchestrator(staticSummarizer("Submit by next Monday."), nil, "", zerolog.Nop())
	got, err := Run(context.Background(), fixedFetch(model.Mail{ID: "1"}, model.Mail{ID: "2"}), orch, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"next Monday"}, got[1].Candidates)
}

func TestRunFetchError(t *testing.T) {
	orch := summarize.NewOrchestrator(nil, nil, "", zerolog.Nop())
	boom := errors.New("list messages: 500")
	_, err := Run(context.Background(), func(context.Context) ([]model.Mail, error) { return nil, boom }, orch, nil)
	assert.ErrorIs(t, err, boom)
}
