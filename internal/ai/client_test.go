package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskradar/internal/tasks"
)

func TestAnalyzeMeetingNotConfigured(t *testing.T) {
	t.Parallel()

	client := New("", "gpt-4o-mini")
	_, err := client.AnalyzeMeeting(context.Background(), "notes", nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAnalyzeMeetingParsesCompletion(t *testing.T) {
	t.Parallel()

	content := `{
		"action_items": [
			{"description": "Sarah will draft the plan", "owner": "Sarah", "is_status_update": false}
		],
		"mentioned_task_ids": ["task-1"],
		"summary": "One new item."
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "MEETING NOTES:") {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	defer srv.Close()

	client := New("test-key", "gpt-4o-mini")
	client.baseURL = srv.URL

	existing := []tasks.Task{{ID: "task-1", Description: "old task", Owner: "Mike", Project: "Alpha"}}
	analysis, err := client.AnalyzeMeeting(context.Background(), "Sarah will draft the plan", existing)
	if err != nil {
		t.Fatalf("AnalyzeMeeting failed: %v", err)
	}

	if len(analysis.ActionItems) != 1 || analysis.ActionItems[0].Owner != "Sarah" {
		t.Errorf("unexpected action items: %+v", analysis.ActionItems)
	}
	if len(analysis.MentionedTaskIDs) != 1 || analysis.MentionedTaskIDs[0] != "task-1" {
		t.Errorf("unexpected mentioned ids: %v", analysis.MentionedTaskIDs)
	}
	if analysis.Summary != "One new item." {
		t.Errorf("summary = %q", analysis.Summary)
	}
}

func TestAnalyzeMeetingAPIErrorSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New("test-key", "gpt-4o-mini")
	client.baseURL = srv.URL

	_, err := client.AnalyzeMeeting(context.Background(), "notes", nil)
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestBuildMeetingPromptIncludesTaskSummaries(t *testing.T) {
	t.Parallel()

	existing := []tasks.Task{
		{ID: "task-1", Description: "Redesign homepage", Owner: "Mike", Project: "Website",
			Status: tasks.StatusPending, Comments: []tasks.Comment{{Text: "internal note"}}},
	}

	prompt := BuildMeetingPrompt("Notes body", existing)

	if !strings.Contains(prompt, `"id":"task-1"`) {
		t.Errorf("prompt must carry task ids: %s", prompt)
	}
	if !strings.Contains(prompt, "Notes body") {
		t.Error("prompt must carry the notes")
	}
	// в промпт уходит компактная сводка, не вся задача
	if strings.Contains(prompt, "internal note") {
		t.Error("comments must not leak into the prompt")
	}
}
