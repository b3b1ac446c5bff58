package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store — постгресовое хранилище коллекции задач. Реализует коллабораторы
// create/update, которые инжектируются в мерж митинговых заметок.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id                   TEXT PRIMARY KEY,
	project              TEXT NOT NULL,
	title                TEXT NOT NULL,
	description          TEXT NOT NULL,
	type                 TEXT NOT NULL,
	due_date             TEXT NOT NULL,
	owner                TEXT NOT NULL,
	status               TEXT NOT NULL,
	created_at           TEXT NOT NULL,
	last_updated         TEXT NOT NULL,
	mentioned_in_meeting TEXT NOT NULL,
	last_mentioned       TEXT NOT NULL,
	follow_up_scheduled  TEXT NOT NULL,
	final_resolution     TEXT NOT NULL DEFAULT '',
	ai_analysis          JSONB,
	comments             JSONB NOT NULL DEFAULT '[]',
	seq                  BIGSERIAL
)`

// Migrate создаёт схему. Даты храним строками RFC3339 — в таком виде они
// приходят из CSV и уходят в JSON, арифметики по ним в SQL нет.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply tasks schema: %w", err)
	}
	return nil
}

// CreateTask валидирует заготовку, чеканит id и делает задачу видимой для
// последующих чтений. Новые задачи всегда стартуют в pending.
func (s *Store) CreateTask(ctx context.Context, draft Draft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	nowStr := s.now().UTC().Format(time.RFC3339)
	if draft.DueDate == "" {
		draft.DueDate = nowStr
	}
	if draft.LastMentioned == "" {
		draft.LastMentioned = nowStr
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, project, title, description, type, due_date, owner, status,
			created_at, last_updated,
			mentioned_in_meeting, last_mentioned, follow_up_scheduled
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		id, draft.Project, draft.Title, draft.Description, string(draft.Type),
		draft.DueDate, draft.Owner, string(StatusPending),
		nowStr, nowStr,
		string(draft.MentionedInMeeting), draft.LastMentioned, string(draft.FollowUpScheduled),
	)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// UpdateTask мержит частичные поля в хранимую задачу и двигает last_updated.
// Комментарий из апдейта дописывается в конец истории.
func (s *Store) UpdateTask(ctx context.Context, id string, update Update) error {
	if err := update.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx, selectTask+` WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load task %s: %w", id, err)
	}

	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Owner != nil {
		task.Owner = *update.Owner
	}
	if update.DueDate != nil {
		task.DueDate = *update.DueDate
	}
	if update.MentionedInMeeting != nil {
		task.MentionedInMeeting = *update.MentionedInMeeting
	}
	if update.LastMentioned != nil {
		task.LastMentioned = *update.LastMentioned
	}
	if update.FollowUpScheduled != nil {
		task.FollowUpScheduled = *update.FollowUpScheduled
	}
	if update.FinalResolution != nil {
		task.FinalResolution = *update.FinalResolution
	}
	if update.AddComment != nil {
		task.Comments = append(task.Comments, *update.AddComment)
	}
	task.LastUpdated = s.now().UTC().Format(time.RFC3339)

	comments, err := json.Marshal(task.Comments)
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET
			status = $2, owner = $3, due_date = $4,
			mentioned_in_meeting = $5, last_mentioned = $6, follow_up_scheduled = $7,
			final_resolution = $8, comments = $9::jsonb, last_updated = $10
		WHERE id = $1`,
		id, string(task.Status), task.Owner, task.DueDate,
		string(task.MentionedInMeeting), task.LastMentioned, string(task.FollowUpScheduled),
		task.FinalResolution, string(comments), task.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}

	return tx.Commit()
}

// ReplaceAnalysis перезаписывает вердикт классификатора целиком.
func (s *Store) ReplaceAnalysis(ctx context.Context, id string, analysis AIAnalysis) error {
	b, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET ai_analysis = $2::jsonb WHERE id = $1`, id, string(b))
	if err != nil {
		return fmt.Errorf("update analysis for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll атомарно заменяет коллекцию — используется загрузкой CSV.
func (s *Store) ReplaceAll(ctx context.Context, list []Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for i := range list {
		t := &list[i]
		var analysis any
		if t.AIAnalysis != nil {
			b, err := json.Marshal(t.AIAnalysis)
			if err != nil {
				return fmt.Errorf("marshal analysis: %w", err)
			}
			analysis = string(b)
		}
		comments, err := json.Marshal(t.Comments)
		if err != nil {
			return fmt.Errorf("marshal comments: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (
				id, project, title, description, type, due_date, owner, status,
				created_at, last_updated,
				mentioned_in_meeting, last_mentioned, follow_up_scheduled,
				final_resolution, ai_analysis, comments
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15::jsonb,$16::jsonb)`,
			t.ID, t.Project, t.Title, t.Description, string(t.Type), t.DueDate, t.Owner,
			string(t.Status), t.CreatedAt, t.LastUpdated,
			string(t.MentionedInMeeting), t.LastMentioned, string(t.FollowUpScheduled),
			t.FinalResolution, analysis, string(comments),
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

const selectTask = `
	SELECT id, project, title, description, type, due_date, owner, status,
	       created_at, last_updated,
	       mentioned_in_meeting, last_mentioned, follow_up_scheduled,
	       final_resolution, ai_analysis, comments
	FROM tasks`

// GetTask возвращает одну задачу по id.
func (s *Store) GetTask(ctx context.Context, id string) (Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, selectTask+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("load task %s: %w", id, err)
	}
	return task, nil
}

// ListTasks возвращает коллекцию в порядке вставки.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, selectTask+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var list []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var analysis sql.NullString
	var comments []byte

	err := row.Scan(
		&t.ID, &t.Project, &t.Title, &t.Description, &t.Type, &t.DueDate, &t.Owner,
		&t.Status, &t.CreatedAt, &t.LastUpdated,
		&t.MentionedInMeeting, &t.LastMentioned, &t.FollowUpScheduled,
		&t.FinalResolution, &analysis, &comments,
	)
	if err != nil {
		return Task{}, err
	}

	if analysis.Valid && analysis.String != "" && analysis.String != "null" {
		var a AIAnalysis
		if err := json.Unmarshal([]byte(analysis.String), &a); err == nil {
			t.AIAnalysis = &a
		}
	}
	if len(comments) > 0 {
		_ = json.Unmarshal(comments, &t.Comments)
	}
	return t, nil
}
