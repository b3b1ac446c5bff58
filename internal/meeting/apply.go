package meeting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskradar/internal/tasks"
)

// CommentAuthor — автор синтетических комментариев, которые мерж дописывает
// к обновлённым задачам.
const CommentAuthor = "Meeting Notes AI"

// newTaskDueDays — дефолтный срок для задач без явного дедлайна.
const newTaskDueDays = 7

// Store — коллабораторы, через которые мерж производит побочные эффекты.
// Ядро никогда не мутирует коллекцию вызывающего напрямую.
type Store interface {
	CreateTask(ctx context.Context, draft tasks.Draft) (string, error)
	UpdateTask(ctx context.Context, id string, update tasks.Update) error
}

// Result — итог мержа: порядок соответствует порядку обработки action items,
// mentioned-only проход дописан в конец.
type Result struct {
	UpdatedTaskIDs      []string `json:"updated_task_ids"`
	NewTaskDescriptions []string `json:"new_task_descriptions"`
}

// Merger применяет Analysis к коллекции задач. Now инжектируется ради
// тестируемости; nil означает time.Now.
type Merger struct {
	Store Store
	Log   logrus.FieldLogger
	Now   func() time.Time
}

// Apply проходит по action items и применяет каждый: статус-апдейты уходят в
// UpdateTask существующей задачи, остальное становится новыми задачами через
// CreateTask. Ошибка на одном элементе логируется и не блокирует остальные;
// статус-апдейт с неразрешимым related_task_id молча выбрасывается.
func (m *Merger) Apply(ctx context.Context, analysis Analysis, existing []tasks.Task) Result {
	log := m.log()
	nowStr := m.now().UTC().Format(time.RFC3339)

	byID := make(map[string]*tasks.Task, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	result := Result{}
	updatedSeen := map[string]bool{}

	for _, item := range analysis.ActionItems {
		if item.IsStatusUpdate {
			if item.RelatedTaskID == "" || byID[item.RelatedTaskID] == nil {
				log.WithField("description", item.Description).
					Warn("status update without resolvable task, dropped")
				continue
			}
			if err := m.applyStatusUpdate(ctx, item, nowStr); err != nil {
				log.WithError(err).WithField("task_id", item.RelatedTaskID).
					Error("failed to apply status update")
				continue
			}
			if !updatedSeen[item.RelatedTaskID] {
				updatedSeen[item.RelatedTaskID] = true
				result.UpdatedTaskIDs = append(result.UpdatedTaskIDs, item.RelatedTaskID)
			}
			continue
		}

		if err := m.createFromItem(ctx, item, nowStr); err != nil {
			log.WithError(err).WithField("description", item.Description).
				Error("failed to create task from action item")
			continue
		}
		result.NewTaskDescriptions = append(result.NewTaskDescriptions, item.Description)
	}

	// Упомянутые без конкретного апдейта задачи тоже отмечаем как
	// всплывавшие на митинге.
	mentioned := tasks.Yes
	for _, id := range analysis.MentionedTaskIDs {
		if updatedSeen[id] || byID[id] == nil {
			continue
		}
		ns := nowStr
		err := m.Store.UpdateTask(ctx, id, tasks.Update{
			MentionedInMeeting: &mentioned,
			LastMentioned:      &ns,
		})
		if err != nil {
			log.WithError(err).WithField("task_id", id).Error("failed to mark task as mentioned")
			continue
		}
		updatedSeen[id] = true
		result.UpdatedTaskIDs = append(result.UpdatedTaskIDs, id)
	}

	return result
}

func (m *Merger) applyStatusUpdate(ctx context.Context, item ActionItem, nowStr string) error {
	text := "Status update from meeting: " + item.Description
	if item.Status != "" {
		text += " (Status: " + item.Status + ")"
	}

	mentioned := tasks.Yes
	ns := nowStr
	update := tasks.Update{
		MentionedInMeeting: &mentioned,
		LastMentioned:      &ns,
		AddComment: &tasks.Comment{
			ID:        uuid.NewString(),
			Text:      text,
			CreatedAt: nowStr,
			Author:    CommentAuthor,
		},
	}

	if st, ok := InferStatus(item.Status); ok {
		switch st {
		case UpdateCompleted:
			s := tasks.StatusCompleted
			update.Status = &s
		case UpdateInProgress:
			s := tasks.StatusInProgress
			update.Status = &s
		}
		// "delayed" не имеет целевого статуса задачи — статус не трогаем.
	}

	return m.Store.UpdateTask(ctx, item.RelatedTaskID, update)
}

func (m *Merger) createFromItem(ctx context.Context, item ActionItem, nowStr string) error {
	draft := tasks.Draft{
		Project:            item.Project,
		Title:              item.Description,
		Description:        item.Description,
		Type:               DetermineType(item.Description),
		DueDate:            m.normalizeDue(item.DueDate),
		Owner:              item.Owner,
		MentionedInMeeting: tasks.Yes,
		LastMentioned:      nowStr,
		FollowUpScheduled:  tasks.No,
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	_, err := m.Store.CreateTask(ctx, draft)
	return err
}

// normalizeDue приводит срок к RFC3339; непарсимый или пустой срок
// заменяется дефолтом "через неделю".
func (m *Merger) normalizeDue(due string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(layout, due); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return m.now().UTC().AddDate(0, 0, newTaskDueDays).Format(time.RFC3339)
}

// DetermineType выводит вид работы из описания по ключевым словам.
func DetermineType(description string) tasks.Type {
	lower := strings.ToLower(description)
	switch {
	case containsAny(lower, "decide", "decision", "choose", "determine", "select"):
		return tasks.TypeDecision
	case containsAny(lower, "follow up", "follow-up", "check in", "check-in", "update on"):
		return tasks.TypeFollowUp
	default:
		return tasks.TypeTask
	}
}

func (m *Merger) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Merger) log() logrus.FieldLogger {
	if m.Log != nil {
		return m.Log
	}
	return logrus.StandardLogger()
}
