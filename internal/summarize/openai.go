package summarize

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mailbrief/internal/model"
)

// DefaultOpenAIModel is used by the OpenAI backend when the configured model is
// still the Hugging Face default.
const DefaultOpenAIModel = "gpt-4o-mini"

const systemPrompt = "You summarize emails for a busy reader. Keep it to 2-3 short sentences and always keep any dates, times and deadlines."

// OpenAI summarizes through any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a backend. A non-empty baseURL points it at a compatible server.
func NewOpenAI(apiKey, modelName, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if modelName == "" || modelName == DefaultModel {
		modelName = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: modelName}
}

func (o *OpenAI) Identity() string {
	return ProviderOpenAI + ":" + o.model
}

func (o *OpenAI) Summarize(ctx context.Context, m model.Mail) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(o.model, m),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return NoSummary, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return NoSummary, nil
	}
	return text, nil
}
