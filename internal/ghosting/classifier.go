// Package ghosting реализует эвристику обнаружения "заброшенных" задач:
// четыре булевых фактора по полям датасета, скоринг по их числу и
// рекомендация действия. Пороговые константы (0.6, 0.7+0.07×n, 0.8, 0.95)
// эмпирические, сохранены как есть ради совместимости вердиктов.
package ghosting

import (
	"fmt"
	"math"
	"time"

	"taskradar/internal/tasks"
)

// recentMentionDays — окно "свежести" упоминания.
const recentMentionDays = 14

// escalateAfterDays — просрочка, после которой действие эскалируется.
const escalateAfterDays = 30

// Classify строит вердикт по одной задаче. Чистая функция от задачи и
// момента времени; никогда не возвращает ошибку — непарсимая дата
// деградирует в вердикт "на ручной разбор".
func Classify(task *tasks.Task, now time.Time) tasks.AIAnalysis {
	// Завершённые и зарезолвленные задачи не бывают ghosted.
	if task.Resolved() {
		reasoning := "Task is already completed"
		if task.FinalResolution != "" {
			reasoning = "Task resolved: " + task.FinalResolution
		}
		return tasks.AIAnalysis{
			IsGhosted:       false,
			Confidence:      0.95,
			Reasoning:       reasoning,
			SuggestedAction: "No action needed",
		}
	}

	dueDate, errDue := parseWhen(task.DueDate)
	lastMentioned, errMention := parseWhen(task.LastMentioned)
	if errDue != nil || errMention != nil {
		return manualReview()
	}

	daysOverdue := wholeDays(dueDate, now)
	daysSinceMention := wholeDays(lastMentioned, now)

	notMentionedInMeeting := task.MentionedInMeeting == tasks.No
	noFollowUpScheduled := task.FollowUpScheduled == tasks.No
	isPastDue := daysOverdue > 0
	notMentionedRecently := daysSinceMention > recentMentionDays

	factors := 0
	for _, f := range []bool{notMentionedInMeeting, noFollowUpScheduled, isPastDue, notMentionedRecently} {
		if f {
			factors++
		}
	}

	switch {
	case factors >= 3:
		// Порядок причин фиксированный: просрочка, давность упоминания,
		// отсутствие в митингах, отсутствие фоллоу-апа.
		reasoning := ""
		push := func(s string) {
			if reasoning != "" {
				reasoning += ". "
			}
			reasoning += s
		}
		if isPastDue {
			push(fmt.Sprintf("Task is %d days overdue", daysOverdue))
		}
		if notMentionedRecently {
			push(fmt.Sprintf("Not mentioned for %d days", daysSinceMention))
		}
		if notMentionedInMeeting {
			push("Not brought up in meetings")
		}
		if noFollowUpScheduled {
			push("No follow-up scheduled")
		}

		var action string
		switch {
		case isPastDue && daysOverdue > escalateAfterDays:
			action = fmt.Sprintf("Urgent: Escalate to %s's manager or reassign task", task.Owner)
		case isPastDue:
			action = fmt.Sprintf("Schedule immediate follow-up with %s", task.Owner)
		case notMentionedRecently:
			action = fmt.Sprintf("Add to next meeting agenda and contact %s", task.Owner)
		default:
			action = fmt.Sprintf("Check with %s for status update", task.Owner)
		}

		return tasks.AIAnalysis{
			IsGhosted:       true,
			Confidence:      math.Min(0.98, 0.7+0.07*float64(factors)),
			Reasoning:       reasoning,
			SuggestedAction: action,
		}

	case factors == 2:
		verdict := tasks.AIAnalysis{IsGhosted: true, Confidence: 0.6}
		switch {
		case isPastDue:
			verdict.Reasoning = fmt.Sprintf("Task is %d days overdue and needs attention", daysOverdue)
			verdict.SuggestedAction = fmt.Sprintf("Follow up with %s about overdue task", task.Owner)
		case notMentionedRecently:
			verdict.Reasoning = fmt.Sprintf("Task hasn't been mentioned for %d days", daysSinceMention)
			verdict.SuggestedAction = fmt.Sprintf("Check with %s for status update", task.Owner)
		default:
			verdict.Reasoning = "Task shows early signs of being forgotten"
			verdict.SuggestedAction = "Monitor closely and add to next meeting agenda"
		}
		return verdict

	default:
		return tasks.AIAnalysis{
			IsGhosted:       false,
			Confidence:      0.8,
			Reasoning:       "Task appears to be on track",
			SuggestedAction: "Continue normal monitoring",
		}
	}
}

// ClassifyAll прогоняет классификатор по всей коллекции. Порядок задач
// сохраняется, входной срез не мутируется. Момент времени фиксируется один
// раз на весь батч — задачи независимы, но "now" должен быть общим.
func ClassifyAll(list []tasks.Task, now time.Time) []tasks.Task {
	out := make([]tasks.Task, len(list))
	for i := range list {
		out[i] = list[i]
		verdict := Classify(&list[i], now)
		out[i].AIAnalysis = &verdict
	}
	return out
}

func manualReview() tasks.AIAnalysis {
	return tasks.AIAnalysis{
		IsGhosted:       false,
		Confidence:      0.5,
		Reasoning:       "Unable to analyze task due to an error",
		SuggestedAction: "Manual review recommended",
	}
}

// wholeDays — целые сутки между from и to, с округлением вниз.
func wholeDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
