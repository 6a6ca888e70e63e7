package summarize

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"mailbrief/internal/model"
)

// Breaker stops calling a failing backend for a while so a dead provider
// does not stall a whole batch on timeouts.
type Breaker struct {
	next Summarizer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps a backend. The circuit opens after 3 consecutive failures
// and half-opens after timeout.
func NewBreaker(name string, next Summarizer, timeout time.Duration, log zerolog.Logger) *Breaker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// The provider answered; an in-band error is not an outage.
			var pe *ProviderError
			return err == nil || errors.As(err, &pe) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("summarizer circuit state changed")
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Summarize(ctx context.Context, m model.Mail) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Summarize(ctx, m)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Identity names the wrapped backend, or "" when it has no identity.
func (b *Breaker) Identity() string {
	if id, ok := b.next.(Identifier); ok {
		return id.Identity()
	}
	return ""
}

// State reports the circuit state for status display.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
