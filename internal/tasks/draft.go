package tasks

import (
	"errors"
	"strings"
)

var (
	ErrInvalidDraft = errors.New("tasks: invalid draft")
	ErrNotFound     = errors.New("tasks: task not found")
)

// Draft — строго типизированная заготовка новой задачи. Id, status и
// created_at назначает хранилище, не вызывающий код.
type Draft struct {
	Project     string `json:"project"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	DueDate     string `json:"due_date"`
	Owner       string `json:"owner"`

	MentionedInMeeting YesNo  `json:"mentioned_in_meeting"`
	LastMentioned      string `json:"last_mentioned"`
	FollowUpScheduled  YesNo  `json:"follow_up_scheduled"`
}

// Validate нормализует заготовку и проверяет обязательные поля.
func (d *Draft) Validate() error {
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return ErrInvalidDraft
	}
	if d.Title == "" {
		d.Title = d.Description
	}
	if d.Type == "" {
		d.Type = TypeTask
	}
	if !ValidType(d.Type) {
		return ErrInvalidDraft
	}
	if d.Owner == "" {
		d.Owner = "Unassigned"
	}
	if d.Project == "" {
		d.Project = "Extracted from Meeting"
	}
	if d.MentionedInMeeting == "" {
		d.MentionedInMeeting = No
	}
	if d.FollowUpScheduled == "" {
		d.FollowUpScheduled = No
	}
	return nil
}

// Update — частичное обновление: nil-поле означает "не трогать".
// AddComment дописывается в конец истории, не заменяет её.
type Update struct {
	Status             *Status  `json:"status,omitempty"`
	Owner              *string  `json:"owner,omitempty"`
	DueDate            *string  `json:"due_date,omitempty"`
	MentionedInMeeting *YesNo   `json:"mentioned_in_meeting,omitempty"`
	LastMentioned      *string  `json:"last_mentioned,omitempty"`
	FollowUpScheduled  *YesNo   `json:"follow_up_scheduled,omitempty"`
	FinalResolution    *string  `json:"final_resolution,omitempty"`
	AddComment         *Comment `json:"add_comment,omitempty"`
}

func (u *Update) Validate() error {
	if u.Status != nil && !ValidStatus(*u.Status) {
		return ErrInvalidDraft
	}
	return nil
}
