// Package taskfile — YAML-снапшот коллекции задач для CLI-сценариев:
// один файл, вся коллекция, атомарная запись через временный файл.
package taskfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"taskradar/internal/tasks"
)

type snapshot struct {
	SavedAt string       `yaml:"saved_at"`
	Tasks   []tasks.Task `yaml:"tasks"`
}

// File — загруженный снапшот. Реализует meeting.Store, так что мерж
// митинговых заметок работает поверх файла так же, как поверх Postgres.
type File struct {
	path string
	now  func() time.Time

	Tasks []tasks.Task
}

// Load читает снапшот; отсутствующий файл даёт пустую коллекцию.
func Load(path string) (*File, error) {
	f := &File{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	f.Tasks = snap.Tasks
	return f, nil
}

// Save пишет снапшот атомарно: во временный файл и rename.
func (f *File) Save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create task file dir: %w", err)
	}

	data, err := yaml.Marshal(snapshot{
		SavedAt: f.now().UTC().Format(time.RFC3339),
		Tasks:   f.Tasks,
	})
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}

// CreateTask чеканит id и дописывает задачу в коллекцию. На диск изменения
// попадают при Save.
func (f *File) CreateTask(_ context.Context, draft tasks.Draft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	nowStr := f.now().UTC().Format(time.RFC3339)
	if draft.DueDate == "" {
		draft.DueDate = nowStr
	}
	if draft.LastMentioned == "" {
		draft.LastMentioned = nowStr
	}

	id := uuid.NewString()
	f.Tasks = append(f.Tasks, tasks.Task{
		ID:                 id,
		Project:            draft.Project,
		Title:              draft.Title,
		Description:        draft.Description,
		Type:               draft.Type,
		DueDate:            draft.DueDate,
		Owner:              draft.Owner,
		Status:             tasks.StatusPending,
		CreatedAt:          nowStr,
		LastUpdated:        nowStr,
		MentionedInMeeting: draft.MentionedInMeeting,
		LastMentioned:      draft.LastMentioned,
		FollowUpScheduled:  draft.FollowUpScheduled,
	})
	return id, nil
}

// UpdateTask мержит частичные поля в задачу коллекции и двигает last_updated.
func (f *File) UpdateTask(_ context.Context, id string, update tasks.Update) error {
	if err := update.Validate(); err != nil {
		return err
	}

	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.ID != id {
			continue
		}
		if update.Status != nil {
			t.Status = *update.Status
		}
		if update.Owner != nil {
			t.Owner = *update.Owner
		}
		if update.DueDate != nil {
			t.DueDate = *update.DueDate
		}
		if update.MentionedInMeeting != nil {
			t.MentionedInMeeting = *update.MentionedInMeeting
		}
		if update.LastMentioned != nil {
			t.LastMentioned = *update.LastMentioned
		}
		if update.FollowUpScheduled != nil {
			t.FollowUpScheduled = *update.FollowUpScheduled
		}
		if update.FinalResolution != nil {
			t.FinalResolution = *update.FinalResolution
		}
		if update.AddComment != nil {
			t.Comments = append(t.Comments, *update.AddComment)
		}
		t.LastUpdated = f.now().UTC().Format(time.RFC3339)
		return nil
	}
	return tasks.ErrNotFound
}
