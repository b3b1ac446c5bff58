package ingest

import (
	"fmt"
	"strings"
	"time"

	"taskradar/internal/tasks"
)

// Transform превращает сырые строки выгрузки в задачи. Id назначаются
// последовательно в порядке строк; created_at проксируется сроком, а
// last_updated — последним упоминанием: других дат в выгрузке нет.
func Transform(rows []RawTask, now time.Time) []tasks.Task {
	out := make([]tasks.Task, 0, len(rows))
	for i, row := range rows {
		dueDate := normalizeDate(row.OriginalDueDate, now)
		lastMentioned := normalizeDate(row.LastMentioned, now)

		out = append(out, tasks.Task{
			ID:                 fmt.Sprintf("task-%d", i+1),
			Project:            row.Project,
			Title:              row.TaskDescription,
			Description:        row.TaskDescription,
			Type:               inferType(row.TaskDescription),
			DueDate:            dueDate,
			Owner:              row.Owner,
			Status:             normalizeStatus(row.Status),
			CreatedAt:          dueDate,
			LastUpdated:        lastMentioned,
			MentionedInMeeting: yesNo(row.MentionedInMeeting),
			LastMentioned:      lastMentioned,
			FollowUpScheduled:  yesNo(row.FollowUpScheduled),
			FinalResolution:    row.FinalResolution,
			Comments:           []tasks.Comment{},
		})
	}
	return out
}

func inferType(description string) tasks.Type {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "decision") || strings.Contains(lower, "decide"):
		return tasks.TypeDecision
	case strings.Contains(lower, "follow") || strings.Contains(lower, "update"):
		return tasks.TypeFollowUp
	default:
		return tasks.TypeTask
	}
}

func normalizeStatus(raw string) tasks.Status {
	switch strings.ToLower(raw) {
	case "completed", "closed", "done":
		return tasks.StatusCompleted
	case "in progress", "in-progress", "started":
		return tasks.StatusInProgress
	default:
		return tasks.StatusPending
	}
}

func yesNo(raw string) tasks.YesNo {
	if strings.EqualFold(strings.TrimSpace(raw), "yes") {
		return tasks.Yes
	}
	return tasks.No
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "1/2/2006"}

// normalizeDate приводит дату выгрузки к RFC3339; пустая или непарсимая
// дата заменяется текущим моментом.
func normalizeDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}
	return now.UTC().Format(time.RFC3339)
}
