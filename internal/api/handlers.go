package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"taskradar/internal/ai"
	"taskradar/internal/analytics"
	"taskradar/internal/ghosting"
	"taskradar/internal/ingest"
	"taskradar/internal/meeting"
	"taskradar/internal/tasks"
)

// Handler держит зависимости HTTP-слоя. Вся бизнес-логика живёт в
// ghosting/meeting, здесь только glue: декодирование, вызовы, кодирование.
type Handler struct {
	Store     *tasks.Store
	AI        *ai.Client
	Analytics *analytics.Recorder
	Log       *logrus.Logger
	IngestURL string
	Now       func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ListTasks — GET /tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListTasks(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("list tasks failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

// CreateTask — POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var draft tasks.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	id, err := h.Store.CreateTask(r.Context(), draft)
	if errors.Is(err, tasks.ErrInvalidDraft) {
		http.Error(w, "description is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("create task failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	h.Analytics.Log(r.Context(), analytics.EventTaskCreated, map[string]any{
		"task_id": id,
		"source":  "api",
	})

	task, err := h.Store.GetTask(r.Context(), id)
	if err != nil {
		h.Log.WithError(err).Error("read back created task failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(task)
}

// AnalyzeTasks — POST /tasks/analyze: прогоняет классификатор по всей
// коллекции и сохраняет вердикты. Момент времени один на весь батч.
func (h *Handler) AnalyzeTasks(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListTasks(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("list tasks failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	analyzed := h.classifyAndPersist(r, list)

	h.Analytics.Log(r.Context(), analytics.EventTasksClassified, map[string]any{
		"total":   len(analyzed),
		"ghosted": countGhosted(analyzed),
	})
	writeJSON(w, analyzed)
}

// Insights — GET /insights
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListTasks(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("list tasks failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, ghosting.Summarize(list))
}

type analyzeMeetingRequest struct {
	MeetingNotes string `json:"meeting_notes"`
	DryRun       bool   `json:"dry_run"`
}

type analyzeMeetingResponse struct {
	Analysis meeting.Analysis `json:"analysis"`
	Result   *meeting.Result  `json:"result,omitempty"`
	Source   string           `json:"source"`
}

// AnalyzeMeeting — POST /meetings/analyze: первичный путь через LLM, при
// любой его ошибке — обязательный детерминированный fallback. Если не
// dry_run, результат мержится в коллекцию и классификатор прогоняется
// заново по всем задачам.
func (h *Handler) AnalyzeMeeting(w http.ResponseWriter, r *http.Request) {
	var req analyzeMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.MeetingNotes == "" {
		http.Error(w, "meeting_notes is required", http.StatusBadRequest)
		return
	}

	existing, err := h.Store.ListTasks(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("list tasks failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	source := "llm"
	analysis, err := h.AI.AnalyzeMeeting(r.Context(), req.MeetingNotes, existing)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			h.Log.WithError(err).Warn("llm analysis failed, using fallback")
		}
		analysis = meeting.Extract(req.MeetingNotes, existing)
		source = "fallback"
	}

	resp := analyzeMeetingResponse{Analysis: analysis, Source: source}

	if !req.DryRun {
		merger := &meeting.Merger{Store: h.Store, Log: h.Log, Now: h.Now}
		result := merger.Apply(r.Context(), analysis, existing)
		resp.Result = &result

		// после мержа коллекция изменилась — переоцениваем всё
		if list, err := h.Store.ListTasks(r.Context()); err == nil {
			h.classifyAndPersist(r, list)
		} else {
			h.Log.WithError(err).Error("re-list after merge failed")
		}
	}

	h.Analytics.Log(r.Context(), analytics.EventMeetingAnalyzed, map[string]any{
		"source":       source,
		"action_items": len(analysis.ActionItems),
		"mentioned":    len(analysis.MentionedTaskIDs),
		"dry_run":      req.DryRun,
	})
	writeJSON(w, resp)
}

type ingestRequest struct {
	URL string `json:"url"`
}

// Ingest — POST /ingest: скачивает CSV-выгрузку, заменяет коллекцию и
// сразу классифицирует её.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	url := req.URL
	if url == "" {
		url = h.IngestURL
	}
	if url == "" {
		http.Error(w, "no ingest url configured", http.StatusBadRequest)
		return
	}

	rows, err := ingest.Fetch(r.Context(), nil, url)
	if err != nil {
		h.Log.WithError(err).Error("csv ingest failed")
		http.Error(w, "ingest error", http.StatusBadGateway)
		return
	}

	list := ingest.Transform(rows, h.now())
	if err := h.Store.ReplaceAll(r.Context(), list); err != nil {
		h.Log.WithError(err).Error("replace tasks failed")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	analyzed := h.classifyAndPersist(r, list)

	h.Analytics.Log(r.Context(), analytics.EventCSVIngested, map[string]any{
		"rows":    len(rows),
		"ghosted": countGhosted(analyzed),
	})
	writeJSON(w, map[string]any{
		"ingested": len(list),
		"ghosted":  countGhosted(analyzed),
	})
}

// classifyAndPersist прогоняет ClassifyAll и сохраняет вердикты. Ошибка
// сохранения одного вердикта не блокирует остальные.
func (h *Handler) classifyAndPersist(r *http.Request, list []tasks.Task) []tasks.Task {
	analyzed := ghosting.ClassifyAll(list, h.now())
	for i := range analyzed {
		if err := h.Store.ReplaceAnalysis(r.Context(), analyzed[i].ID, *analyzed[i].AIAnalysis); err != nil {
			h.Log.WithError(err).WithField("task_id", analyzed[i].ID).Error("persist verdict failed")
		}
	}
	return analyzed
}

func countGhosted(list []tasks.Task) int {
	n := 0
	for i := range list {
		if list[i].AIAnalysis != nil && list[i].AIAnalysis.IsGhosted {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
