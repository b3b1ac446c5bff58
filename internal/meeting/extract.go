package meeting

import (
	"fmt"
	"regexp"
	"strings"

	"taskradar/internal/tasks"
)

// Сознательно bag-of-words/substring эвристика, не семантический парсер:
// ложные срабатывания допустимы, контракт — воспроизводимость на одном входе.

// minLineLen — строки короче не рассматриваются вовсе.
const minLineLen = 10

// significantWordLen — слова длиннее этого участвуют в сопоставлении задач.
const significantWordLen = 4

// matchThreshold — сколько значимых слов задачи должно встретиться в строке.
const matchThreshold = 2

var actionMarkers = []string{"will ", "needs to ", "should ", "to do:", "action item", "follow up"}

var dashMarkers = []string{"will", "need", "should", "must"}

var projectKeywords = []string{"project", "campaign", "initiative", "website", "app", "product"}

var (
	ownerRe      = regexp.MustCompile(`([A-Z][a-z]+)(?:\s+will|\s+needs|\s+should|\s+to)`)
	dashPrefixRe = regexp.MustCompile(`^-\s*`)
	projectRes   = compileProjectRes()
)

func compileProjectRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(projectKeywords))
	for _, kw := range projectKeywords {
		res[kw] = regexp.MustCompile(`(?i)(\w+\s+` + kw + `)`)
	}
	return res
}

// Extract — детерминированный fallback-разбор заметок, построчный.
// Работает без LLM и используется всегда, когда внешний анализ недоступен
// или упал. Apply обязан работать одинаково с результатом любого пути.
func Extract(notes string, existing []tasks.Task) Analysis {
	var items []ActionItem
	var mentioned []string
	mentionedSeen := map[string]bool{}

	for _, raw := range strings.Split(notes, "\n") {
		line := strings.TrimSpace(raw)
		if len(line) < minLineLen {
			continue
		}

		if !isActionLine(line) {
			// Строка без action-маркеров может всё равно упоминать задачу
			// целиком — фиксируем для прохода "mentioned-only".
			lower := strings.ToLower(line)
			for i := range existing {
				t := &existing[i]
				if strings.Contains(lower, strings.ToLower(t.Description)) && !mentionedSeen[t.ID] {
					mentionedSeen[t.ID] = true
					mentioned = append(mentioned, t.ID)
				}
			}
			continue
		}

		item := ActionItem{
			Description: dashPrefixRe.ReplaceAllString(line, ""),
			Owner:       extractOwner(line),
			Project:     extractProject(line),
		}

		// Первая подошедшая задача выигрывает; скоринга между несколькими
		// кандидатами нет. Известное ограничение: задачи с общими значимыми
		// словами могут слинковаться не туда.
		if t := matchTask(line, existing); t != nil {
			item.IsStatusUpdate = true
			item.RelatedTaskID = t.ID
			if st, ok := InferStatus(line); ok {
				item.Status = string(st)
			}
		}

		items = append(items, item)
	}

	return Analysis{
		ActionItems:      items,
		MentionedTaskIDs: mentioned,
		Summary:          buildSummary(len(items), len(mentioned)),
	}
}

func isActionLine(line string) bool {
	for _, m := range actionMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	if strings.HasPrefix(line, "-") {
		for _, m := range dashMarkers {
			if strings.Contains(line, m) {
				return true
			}
		}
	}
	return false
}

func extractOwner(line string) string {
	if m := ownerRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return "Unassigned"
}

func extractProject(line string) string {
	lower := strings.ToLower(line)
	for _, kw := range projectKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		if m := projectRes[kw].FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return "Extracted from Meeting"
}

// matchTask ищет первую задачу, чьё описание "узнаётся" в строке: либо
// минимум matchThreshold значимых слов описания входят в строку как
// подстроки, либо описание целиком входит в строку.
func matchTask(line string, existing []tasks.Task) *tasks.Task {
	lower := strings.ToLower(line)
	for i := range existing {
		t := &existing[i]
		desc := strings.ToLower(t.Description)

		count := 0
		for _, word := range strings.Split(desc, " ") {
			if len(word) > significantWordLen && strings.Contains(lower, word) {
				count++
			}
		}
		if count >= matchThreshold || strings.Contains(lower, desc) {
			return t
		}
	}
	return nil
}

// InferStatus вытаскивает статус из текста по подстрокам, в фиксированном
// приоритете: completed > in-progress > delayed. Общая точка для Extract
// (по строке заметок) и Apply (по полю status элемента).
func InferStatus(s string) (UpdateStatus, bool) {
	lower := strings.ToLower(s)
	switch {
	case containsAny(lower, "complet", "done", "finished"):
		return UpdateCompleted, true
	case containsAny(lower, "in progress", "working on", "started"):
		return UpdateInProgress, true
	case containsAny(lower, "delay", "behind", "issue"):
		return UpdateDelayed, true
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func buildSummary(itemCount, mentionedCount int) string {
	summary := "Meeting notes analyzed. "
	if itemCount > 0 {
		summary += fmt.Sprintf("Found %d action items. ", itemCount)
	}
	if mentionedCount > 0 {
		summary += fmt.Sprintf("%d existing tasks were mentioned.", mentionedCount)
	}
	return summary
}
