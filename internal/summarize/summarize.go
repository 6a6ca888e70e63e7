// Package summarize turns mail into short summaries through a pluggable
// inference backend, with a local cache in front of it.
package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"mailbrief/internal/model"
)

// Placeholders shown in place of a summary. None of them is ever cached.
const (
	NoAPIKey     = "(no API key)"
	ErrorSummary = "(error summarizing)"
	NoSummary    = "(no summary)"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "facebook/bart-large-cnn"

// ErrNoAPIKey is returned when summarization was requested without a key.
var ErrNoAPIKey = errors.New("summarizer API key not set")

// ProviderError is an error the provider reported inside a successful response.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string { return "provider: " + e.Message }

// Placeholder renders the summary text for a failed summarization.
func Placeholder(err error) string {
	var pe *ProviderError
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return NoAPIKey
	case errors.As(err, &pe):
		return fmt.Sprintf("(error: %s)", pe.Message)
	default:
		return ErrorSummary
	}
}

// IsPlaceholder reports whether s is one of the placeholder strings rather
// than a real summary.
func IsPlaceholder(s string) bool {
	if s == NoAPIKey || s == ErrorSummary || s == NoSummary {
		return true
	}
	return len(s) > 8 && s[:8] == "(error: " && s[len(s)-1] == ')'
}

// Summarizer produces a summary for one mail.
type Summarizer interface {
	Summarize(ctx context.Context, m model.Mail) (string, error)
}

// Cache stores summaries per (message id, model).
type Cache interface {
	GetSummary(ctx context.Context, messageID, model string) (string, bool, error)
	PutSummary(ctx context.Context, messageID, model, summary string) error
	DeleteSummaries(ctx context.Context, messageIDs []string) error
}

// Identifier is implemented by backends that can name the provider and the
// model they actually call. The name keys the summary cache, so switching
// provider or model never serves another backend's summaries.
type Identifier interface {
	Identity() string
}

// Orchestrator summarizes a batch of mail one message at a time.
type Orchestrator struct {
	backend  Summarizer
	cache    Cache
	cacheKey string
	log      zerolog.Logger
}

// NewOrchestrator wires a backend and an optional cache. A nil backend means
// no API key is configured. modelName keys the cache only when the backend
// does not implement Identifier.
func NewOrchestrator(backend Summarizer, cache Cache, modelName string, log zerolog.Logger) *Orchestrator {
	key := modelName
	if key == "" {
		key = DefaultModel
	}
	if id, ok := backend.(Identifier); ok && id.Identity() != "" {
		key = id.Identity()
	}
	return &Orchestrator{
		backend:  backend,
		cache:    cache,
		cacheKey: key,
		log:     log.With().Str("component", "summarize").Logger(),
	}
}

// SummarizeAll returns exactly one entry per mail, in order. A failure on one
// message becomes a placeholder and does not stop the rest. With no backend
// every entry is NoAPIKey and ErrNoAPIKey is returned.
// progress, if non-nil, is called after each message.
func (o *Orchestrator) SummarizeAll(ctx context.Context, mails []model.Mail, progress func(model.SummaryProgress)) ([]string, error) {
	out := make([]string, len(mails))
	if o.backend == nil {
		for i := range out {
			out[i] = NoAPIKey
		}
		return out, ErrNoAPIKey
	}

	for i, m := range mails {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = o.summarizeOne(ctx, m)
		if progress != nil {
			progress(model.SummaryProgress{Done: i + 1, Total: len(mails)})
		}
	}
	return out, nil
}

func (o *Orchestrator) summarizeOne(ctx context.Context, m model.Mail) string {
	if o.cache != nil && m.ID != "" {
		s, ok, err := o.cache.GetSummary(ctx, m.ID, o.cacheKey)
		if err != nil {
			o.log.Warn().Err(err).Str("message_id", m.ID).Msg("summary cache read failed")
		} else if ok {
			return s
		}
	}

	s, err := o.backend.Summarize(ctx, m)
	if err != nil {
		o.log.Error().Err(err).Str("message_id", m.ID).Msg("summarize failed")
		return Placeholder(err)
	}
	if s == "" {
		return NoSummary
	}

	if o.cache != nil && m.ID != "" && !IsPlaceholder(s) {
		if err := o.cache.PutSummary(ctx, m.ID, o.cacheKey, s); err != nil {
			o.log.Warn().Err(err).Str("message_id", m.ID).Msg("summary cache write failed")
		}
	}
	return s
}

// Forget drops cached summaries for messages that left the digest, such as
// mail that was just marked read.
func (o *Orchestrator) Forget(ctx context.Context, messageIDs ...string) error {
	if o.cache == nil {
		return nil
	}
	return o.cache.DeleteSummaries(ctx, messageIDs)
}

// HasBackend reports whether an API key was configured.
func (o *Orchestrator) HasBackend() bool {
	return o.backend != nil
}

// CacheKey is the name summaries are cached under.
func (o *Orchestrator) CacheKey() string {
	return o.cacheKey
}
