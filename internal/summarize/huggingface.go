package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mailbrief/internal/model"
)

// DefaultHuggingFaceURL is the inference endpoint prefix; the model name is appended.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/"

// HuggingFace calls the hosted inference API with {"inputs": prompt}.
type HuggingFace struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewHuggingFace builds a backend. An empty baseURL uses DefaultHuggingFaceURL.
func NewHuggingFace(apiKey, modelName, baseURL string, client *http.Client) *HuggingFace {
	if modelName == "" {
		modelName = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HuggingFace{apiKey: apiKey, model: modelName, baseURL: baseURL, http: client}
}

func (h *HuggingFace) Identity() string {
	return ProviderHuggingFace + ":" + h.model
}

func (h *HuggingFace) Summarize(ctx context.Context, m model.Mail) (string, error) {
	payload, err := json.Marshal(map[string]string{"inputs": BuildPrompt(h.model, m)})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.model, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("inference HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text, err := parseInference(body)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return NoSummary, nil
	}
	return text, nil
}

// parseInference accepts every shape the inference API answers with:
// an array of {summary_text} or {generated_text} objects or strings, a bare
// string, an object with generated_text, or an object with error.
func parseInference(body []byte) (string, error) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}

	switch v := data.(type) {
	case []interface{}:
		if len(v) == 0 {
			return "", nil
		}
		switch first := v[0].(type) {
		case map[string]interface{}:
			if s, ok := first["summary_text"].(string); ok && s != "" {
				return s, nil
			}
			if s, ok := first["generated_text"].(string); ok && s != "" {
				return s, nil
			}
		case string:
			return first, nil
		}
		raw, err := json.Marshal(v[0])
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case string:
		return v, nil
	case map[string]interface{}:
		if s, ok := v["generated_text"].(string); ok && s != "" {
			return s, nil
		}
		if e, ok := v["error"]; ok && e != nil {
			msg, isString := e.(string)
			if !isString {
				raw, _ := json.Marshal(e)
				msg = string(raw)
			}
			return "", &ProviderError{Message: msg}
		}
	}
	return "", nil
}
