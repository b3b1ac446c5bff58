package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskradar/internal/meeting"
	"taskradar/internal/tasks"
)

// ErrNotConfigured — ключ не задан; вызывающий обязан уйти в
// детерминированный fallback-разбор.
var ErrNotConfigured = errors.New("ai: api key is not configured")

const completionsURL = "https://api.openai.com/v1/chat/completions"

// Client — первичный (не core) путь анализа заметок через OpenAI.
// Любая ошибка здесь не фатальна: ядро обязано работать и без LLM.
type Client struct {
	APIKey string
	Model  string

	baseURL    string
	httpClient *http.Client
}

func New(apiKey, model string) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		baseURL: completionsURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// AnalyzeMeeting отправляет заметки и компактную сводку существующих задач
// в модель и ждёт строгий JSON в схеме meeting.Analysis.
func (c *Client) AnalyzeMeeting(ctx context.Context, notes string, existing []tasks.Task) (meeting.Analysis, error) {
	if c.APIKey == "" {
		return meeting.Analysis{}, ErrNotConfigured
	}

	body := map[string]any{
		"model":       c.Model,
		"temperature": 0.2,
		"response_format": map[string]string{
			"type": "json_object",
		},
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": BuildMeetingPrompt(notes, existing)},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return meeting.Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return meeting.Analysis{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return meeting.Analysis{}, fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return meeting.Analysis{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return meeting.Analysis{}, fmt.Errorf("openai returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &completion); err != nil {
		return meeting.Analysis{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return meeting.Analysis{}, errors.New("ai: empty completion")
	}

	var analysis meeting.Analysis
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &analysis); err != nil {
		return meeting.Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	if analysis.Summary == "" {
		analysis.Summary = "Meeting notes analyzed."
	}
	return analysis, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
