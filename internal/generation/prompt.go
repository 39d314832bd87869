package generation

import (
	"fmt"
	"strings"

	"resume-builder/internal/llm"
	"resume-builder/resume/model"
)

const systemPromptHeader = `You are an expert resume writer. Your task is to create or modify a resume to match the given job description.
You must respond ONLY with a JSON object that matches exactly this structure:
`

const systemPromptRules = `
Fill in all fields appropriately based on the job description and resume template provided.
- Keep arrays of strings concise and relevant
- Ensure all dates are in the format "MMM YYYY - MMM YYYY"
- Make sure all achievements and details are specific and quantified where possible
- Do not include any explanation or additional text, only the JSON object
`

// SystemPrompt embeds the blank document so the model sees the exact target shape.
func SystemPrompt() (string, error) {
	blank, err := model.BlankJSON()
	if err != nil {
		return "", fmt.Errorf("blank resume: %w", err)
	}
	return systemPromptHeader + blank + "\n" + systemPromptRules, nil
}

// UserPrompt embeds the job description and, when present, the template text verbatim.
func UserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Job Description: ")
	b.WriteString(req.JobDescription)
	b.WriteString("\n")
	if req.HasTemplate() {
		b.WriteString("Current Resume: ")
		b.WriteString(req.ResumeTemplate)
	} else {
		b.WriteString("Create a new resume from scratch.")
	}
	b.WriteString("\n\nFill the JSON template with appropriate content that matches this job description.")
	return b.String()
}

func buildPrompt(system string, req Request, modelName string, maxTokens int) llm.Prompt {
	return llm.Prompt{
		System:    system,
		User:      UserPrompt(req),
		Model:     modelName,
		MaxTokens: maxTokens,
	}
}
