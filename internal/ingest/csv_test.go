package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleCSV = `Project,Task_Description,Owner,Status,Mentioned_in_Meeting,Original_Due_Date,Last_Mentioned,Follow_Up_Scheduled,Final_Resolution
Website Redesign,"Update banner, hero and footer",Mike,In Progress,Yes,2025-05-01,2025-05-20,No,
Q2 Campaign,Choose vendor for print ads,Sarah,Pending,No,05/10/2025,2025-04-01,No,
Ops,Decommission old CI,Elena,Completed,Yes,2025-03-01,2025-03-15,Yes,Migrated to new CI
`

func TestParseHandlesQuotedCommas(t *testing.T) {
	t.Parallel()

	rows, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if rows[0].TaskDescription != "Update banner, hero and footer" {
		t.Errorf("quoted comma mishandled: %q", rows[0].TaskDescription)
	}
	if rows[2].FinalResolution != "Migrated to new CI" {
		t.Errorf("final resolution = %q", rows[2].FinalResolution)
	}
}

func TestParseEmptyInput(t *testing.T) {
	t.Parallel()

	rows, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	rows, err := Fetch(context.Background(), nil, srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), nil, srv.URL); err == nil {
		t.Fatal("expected error on 404")
	}
}
