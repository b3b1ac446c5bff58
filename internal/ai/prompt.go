package ai

import (
	"encoding/json"
	"strings"

	"taskradar/internal/tasks"
)

// taskSummary — компактное представление задачи для промпта: модели не
// нужны даты, статусы и комментарии, только то, по чему линкуются апдейты.
type taskSummary struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Project     string `json:"project"`
}

// BuildMeetingPrompt собирает user-сообщение: сводку существующих задач и
// сами заметки.
func BuildMeetingPrompt(notes string, existing []tasks.Task) string {
	summaries := make([]taskSummary, 0, len(existing))
	for i := range existing {
		t := &existing[i]
		summaries = append(summaries, taskSummary{
			ID:          t.ID,
			Description: t.Description,
			Owner:       t.Owner,
			Project:     t.Project,
		})
	}

	// Коллекция может быть пустой — модель тогда всё извлекает как новое.
	tasksJSON, err := json.Marshal(summaries)
	if err != nil {
		tasksJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("EXISTING TASKS:\n")
	b.Write(tasksJSON)
	b.WriteString("\n\nMEETING NOTES:\n")
	b.WriteString(notes)
	b.WriteString("\n")
	return b.String()
}
