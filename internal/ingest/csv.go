// Package ingest загружает CSV-выгрузку трекера и превращает строки в
// задачи. Это тонкий вход в систему: вся валидация мягкая, битые значения
// заменяются безопасными дефолтами, а не отбрасывают строку.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RawTask — строка выгрузки в исходных колонках датасета.
type RawTask struct {
	Project            string
	TaskDescription    string
	Owner              string
	Status             string
	MentionedInMeeting string
	OriginalDueDate    string
	LastMentioned      string
	FollowUpScheduled  string
	FinalResolution    string
}

// Fetch скачивает CSV по URL и разбирает его.
func Fetch(ctx context.Context, client *http.Client, url string) ([]RawTask, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch csv: unexpected status %d", resp.StatusCode)
	}

	return Parse(resp.Body)
}

// Parse читает CSV с заголовком; колонки сопоставляются по имени, лишние
// игнорируются, отсутствующие дают пустые значения.
func Parse(r io.Reader) ([]RawTask, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var out []RawTask
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		out = append(out, RawTask{
			Project:            field(record, "Project"),
			TaskDescription:    field(record, "Task_Description"),
			Owner:              field(record, "Owner"),
			Status:             field(record, "Status"),
			MentionedInMeeting: field(record, "Mentioned_in_Meeting"),
			OriginalDueDate:    field(record, "Original_Due_Date"),
			LastMentioned:      field(record, "Last_Mentioned"),
			FollowUpScheduled:  field(record, "Follow_Up_Scheduled"),
			FinalResolution:    field(record, "Final_Resolution"),
		})
	}
	return out, nil
}
