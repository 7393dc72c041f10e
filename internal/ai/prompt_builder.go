package ai

import (
	"strings"

	"taskmind-backend/internal/models"
)

const noDescription = "(no description)"

// BuildClassifyPrompt formats the user message for one classification call.
func BuildClassifyPrompt(in models.TaskInput) string {
	var b strings.Builder

	b.WriteString("Task:\n")
	b.WriteString("title: ")
	b.WriteString(strings.TrimSpace(in.Title))
	b.WriteString("\n")

	b.WriteString("description: ")
	if d := models.OptionalText(in.Description); d != nil {
		b.WriteString(*d)
	} else {
		b.WriteString(noDescription)
	}
	b.WriteString("\n\n")

	b.WriteString("Return only the JSON object with priority, status, category and reason.")
	return b.String()
}

// BuildSuggestPrompt formats the user message for a suggestion call.
func BuildSuggestPrompt(query string) string {
	var b strings.Builder

	b.WriteString("Request:\n")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n\n")
	b.WriteString("Return only the JSON object with title and description.")
	return b.String()
}
