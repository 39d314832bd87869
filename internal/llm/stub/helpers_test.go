package stub

import "resume-builder/internal/llm"

func llmPrompt() llm.Prompt {
	return llm.Prompt{System: "sys", User: "Job Description: Go"}
}
