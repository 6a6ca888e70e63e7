package summarize

import (
	"fmt"
	"strings"

	"mailbrief/internal/model"
)

var instructionKeywords = []string{"flan", "instruct", "mistral", "llama", "command", "chat"}

// IsInstructionModel reports whether a model name looks like an
// instruction-following model rather than a plain summarization model.
func IsInstructionModel(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range instructionKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

const instruction = "Summarize this email in 2–3 short sentences focusing on key actions, important information, and any deadlines or events mentioned."

// BuildPrompt renders the model input for one mail. The body falls back to
// the snippet when empty.
func BuildPrompt(modelName string, m model.Mail) string {
	body := m.Body
	if body == "" {
		body = m.Snippet
	}
	if IsInstructionModel(modelName) {
		return fmt.Sprintf("%s\n\nSubject: %s\nFrom: %s\nDate: %s\nBody: %s",
			instruction, m.Subject, m.From, m.Date, body)
	}
	return fmt.Sprintf("%s\nFrom: %s\nDate: %s\n\n%s", m.Subject, m.From, m.Date, body)
}
