package tasks

// Type классифицирует вид работы, извлечённой из заметок.
type Type string

const (
	TypeTask     Type = "Task"
	TypeDecision Type = "Decision"
	TypeFollowUp Type = "Follow-up"
)

// Status — жизненный цикл задачи. Closed set; "delayed" из митинговых
// апдейтов сюда намеренно не входит.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// YesNo — флаги-свидетельства из датасета (Mentioned_in_Meeting,
// Follow_Up_Scheduled).
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// AIAnalysis — вердикт классификатора. Перезаписывается целиком при каждом
// прогоне, не мержится.
type AIAnalysis struct {
	IsGhosted       bool    `json:"is_ghosted" yaml:"is_ghosted"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	Reasoning       string  `json:"reasoning" yaml:"reasoning"`
	SuggestedAction string  `json:"suggested_action" yaml:"suggested_action"`
}

type Comment struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Author    string `json:"author" yaml:"author"`
}

// Task — единица отслеживаемой работы. Все даты хранятся строками RFC3339:
// так они приходят из CSV-выгрузки и так же уходят в JSON/YAML; парсим лениво
// там, где нужна арифметика.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Project     string `json:"project" yaml:"project"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Type        Type   `json:"type" yaml:"type"`
	DueDate     string `json:"due_date" yaml:"due_date"`
	Owner       string `json:"owner" yaml:"owner"`
	Status      Status `json:"status" yaml:"status"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
	LastUpdated string `json:"last_updated" yaml:"last_updated"`

	MentionedInMeeting YesNo  `json:"mentioned_in_meeting" yaml:"mentioned_in_meeting"`
	LastMentioned      string `json:"last_mentioned" yaml:"last_mentioned"`
	FollowUpScheduled  YesNo  `json:"follow_up_scheduled" yaml:"follow_up_scheduled"`
	FinalResolution    string `json:"final_resolution,omitempty" yaml:"final_resolution,omitempty"`

	AIAnalysis *AIAnalysis `json:"ai_analysis,omitempty" yaml:"ai_analysis,omitempty"`
	Comments   []Comment   `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Resolved: наличие final_resolution закрывает задачу независимо от status.
// Проверять нужно оба поля.
func (t *Task) Resolved() bool {
	return t.Status == StatusCompleted || t.FinalResolution != ""
}

func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

func ValidType(tt Type) bool {
	return tt == TypeTask || tt == TypeDecision || tt == TypeFollowUp
}
