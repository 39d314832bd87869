package openai

import (
	"strings"

	"resume-builder/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

// BuildMessages maps a prompt to chat messages. Reasoning models take the
// instruction as a developer message instead of system.
func BuildMessages(prompt llm.Prompt, model string) []Message {
	messages := make([]Message, 0, 2)
	if strings.TrimSpace(prompt.System) != "" {
		role := "system"
		if isReasoningModel(model) {
			role = "developer"
		}
		messages = append(messages, Message{Role: role, Content: prompt.System})
	}
	return append(messages, Message{Role: "user", Content: prompt.User})
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return isGPT5(m) || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}
