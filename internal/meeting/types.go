// Package meeting сопоставляет свободный текст митинговых заметок с
// коллекцией задач: извлекает action items, решает для каждого — новая это
// задача или апдейт существующей, и применяет результат через внешние
// коллабораторы хранилища.
package meeting

// UpdateStatus — словарь статусов из митинговых апдейтов. Шире, чем
// tasks.Status: "delayed" валиден здесь, но не имеет целевого статуса
// задачи и при мерже статус не меняет.
type UpdateStatus string

const (
	UpdateCompleted  UpdateStatus = "completed"
	UpdateInProgress UpdateStatus = "in-progress"
	UpdateDelayed    UpdateStatus = "delayed"
)

// ActionItem — единица извлечённого намерения.
// Инвариант: IsStatusUpdate=true только вместе с непустым RelatedTaskID.
type ActionItem struct {
	Description    string `json:"description"`
	Owner          string `json:"owner,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	Project        string `json:"project,omitempty"`
	IsStatusUpdate bool   `json:"is_status_update"`
	RelatedTaskID  string `json:"related_task_id,omitempty"`
	// Свободный текст статуса (от LLM может прийти что угодно);
	// в tasks.Status мапится только через InferStatus.
	Status string `json:"status,omitempty"`
}

// Analysis — транзиентный результат разбора заметок. Не персистится,
// потребляется один раз шагом Apply.
type Analysis struct {
	ActionItems      []ActionItem `json:"action_items"`
	MentionedTaskIDs []string     `json:"mentioned_task_ids,omitempty"`
	Summary          string       `json:"summary"`
}
