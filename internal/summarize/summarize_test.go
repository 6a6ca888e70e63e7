package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbrief/internal/model"
)

type fakeBackend struct {
	calls int
	fn    func(m model.Mail) (string, error)
}

func (f *fakeBackend) Summarize(_ context.Context, m model.Mail) (string, error) {
	f.calls++
	return f.fn(m)
}

type memCache struct {
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) GetSummary(_ context.Context, id, model string) (string, bool, error) {
	s, ok := c.data[id+"|"+model]
	return s, ok, nil
}

func (c *memCache) PutSummary(_ context.Context, id, model, summary string) error {
	c.data[id+"|"+model] = summary
	return nil
}

func (c *memCache) DeleteSummaries(_ context.Context, ids []string) error {
	for k := range c.data {
		for _, id := range ids {
			if strings.HasPrefix(k, id+"|") {
				delete(c.data, k)
			}
		}
	}
	return nil
}

func mails(ids ...string) []model.Mail {
	out := make([]model.Mail, len(ids))
	for i, id := range ids {
		out[i] = model.Mail{ID: id, Subject: "subject " + id}
	}
	return out
}

func TestSummarizeAllNoBackend(t *testing.T) {
	o := NewOrchestrator(nil, nil, "", zerolog.Nop())
	got, err := o.SummarizeAll(context.Background(), mails("a", "b", "c"), nil)
	require.ErrorIs(t, err, ErrNoAPIKey)
	assert.Equal(t, []string{NoAPIKey, NoAPIKey, NoAPIKey}, got)
}

func TestSummarizeAllOneFailure(t *testing.T) {
	backend := &fakeBackend{fn: func(m model.Mail) (string, error) {
		if m.ID == "b" {
			return "", errors.New("boom")
		}
		return "summary of " + m.ID, nil
	}}
	var progress []model.SummaryProgress
	o := NewOrchestrator(backend, nil, "", zerolog.Nop())

	got, err := o.SummarizeAll(context.Background(), mails("a", "b", "c"), func(p model.SummaryProgress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"summary of a", ErrorSummary, "summary of c"}, got)
	assert.Equal(t, 3, backend.calls)
	require.Len(t, progress, 3)
	assert.Equal(t, model.SummaryProgress{Done: 3, Total: 3}, progress[2])
}

func TestSummarizeAllProviderError(t *testing.T) {
	backend := &fakeBackend{fn: func(model.Mail) (string, error) {
		return "", &ProviderError{Message: "Model is loading"}
	}}
	o := NewOrchestrator(backend, nil, "", zerolog.Nop())
	got, err := o.SummarizeAll(context.Background(), mails("a"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"(error: Model is loading)"}, got)
}

func TestSummarizeAllUsesCache(t *testing.T) {
	cache := newMemCache()
	cache.data["a|"+DefaultModel] = "cached a"
	backend := &fakeBackend{fn: func(m model.Mail) (string, error) {
		if m.ID == "c" {
			return "", errors.New("boom")
		}
		return "fresh " + m.ID, nil
	}}
	o := NewOrchestrator(backend, cache, "", zerolog.Nop())

	got, err := o.SummarizeAll(context.Background(), mails("a", "b", "c"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cached a", "fresh b", ErrorSummary}, got)
	assert.Equal(t, 2, backend.calls)
	assert.Equal(t, "fresh b", cache.data["b|"+DefaultModel])
	_, cachedFailure := cache.data["c|"+DefaultModel]
	assert.False(t, cachedFailure, "placeholders must not be cached")
}

func TestSummarizeAllEmptyResultIsNoSummary(t *testing.T) {
	cache := newMemCache()
	backend := &fakeBackend{fn: func(model.Mail) (string, error) { return "", nil }}
	o := NewOrchestrator(backend, cache, "m", zerolog.Nop())
	got, err := o.SummarizeAll(context.Background(), mails("a"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{NoSummary}, got)
	assert.Empty(t, cache.data)
}

func TestSummarizeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := &fakeBackend{fn: func(model.Mail) (string, error) { return "x", nil }}
	o := NewOrchestrator(backend, nil, "", zerolog.Nop())
	_, err := o.SummarizeAll(ctx, mails("a"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, backend.calls)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, NoAPIKey, Placeholder(ErrNoAPIKey))
	assert.Equal(t, "(error: bad)", Placeholder(&ProviderError{Message: "bad"}))
	assert.Equal(t, ErrorSummary, Placeholder(errors.New("network")))
}

func TestIsPlaceholder(t *testing.T) {
	for _, s := range []string{NoAPIKey, ErrorSummary, NoSummary, "(error: rate limited)"} {
		assert.True(t, IsPlaceholder(s), s)
	}
	for _, s := range []string{"", "Meeting moved to Friday.", "(error"} {
		assert.False(t, IsPlaceholder(s), s)
	}
}

func TestForget(t *testing.T) {
	cache := newMemCache()
	cache.data["a|m"] = "x"
	cache.data["b|m"] = "y"
	o := NewOrchestrator(&fakeBackend{}, cache, "m", zerolog.Nop())
	require.NoError(t, o.Forget(context.Background(), "a"))
	assert.Equal(t, map[string]string{"b|m": "y"}, cache.data)

	assert.NoError(t, NewOrchestrator(nil, nil, "", zerolog.Nop()).Forget(context.Background(), "a"))
}
