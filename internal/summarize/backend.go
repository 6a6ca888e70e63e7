package summarize

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

// NewBackend builds the configured provider behind a circuit breaker. It
// returns nil, nil when apiKey is empty so callers fall into the no-key path.
func NewBackend(provider, apiKey, modelName, baseURL string, log zerolog.Logger) (Summarizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}
	var backend Summarizer
	switch strings.ToLower(provider) {
	case "", ProviderHuggingFace:
		backend = NewHuggingFace(apiKey, modelName, baseURL, nil)
	case ProviderOpenAI:
		backend = NewOpenAI(apiKey, modelName, baseURL)
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", provider)
	}
	return NewBreaker(provider, backend, 0, log), nil
}
