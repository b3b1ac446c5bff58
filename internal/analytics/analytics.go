// Package analytics пишет продуктовые события в Postgres. Логирование
// строго best-effort: ошибка записи события никогда не ломает основной
// поток классификации или мержа.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Имена событий.
const (
	EventCSVIngested     = "csv_ingested"
	EventTasksClassified = "tasks_classified"
	EventMeetingAnalyzed = "meeting_analyzed"
	EventTaskCreated     = "task_created"
)

const schema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	id         BIGSERIAL PRIMARY KEY,
	event_name TEXT NOT NULL,
	event_time TIMESTAMPTZ NOT NULL,
	properties JSONB
)`

type Recorder struct {
	db *sql.DB
}

func New(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Log вставляет одно событие. Сырые тексты заметок сюда не передаются —
// вызывающий кладёт только счётчики и флаги.
func (r *Recorder) Log(ctx context.Context, eventName string, props map[string]any) {
	if r == nil || eventName == "" {
		return
	}

	b, err := json.Marshal(props)
	if err != nil {
		// событие с некодируемыми props просто пропускаем
		return
	}

	_, _ = r.db.ExecContext(ctx, `
		INSERT INTO analytics_events (event_name, event_time, properties)
		VALUES ($1, $2, $3::jsonb)`,
		eventName, time.Now().UTC(), string(b),
	)
}
