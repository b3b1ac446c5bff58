package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"taskradar/internal/tasks"
)

// fakeStore пишет все вызовы коллабораторов, позволяя проверять мерж без
// настоящего хранилища.
type fakeStore struct {
	created []tasks.Draft
	updates map[string][]tasks.Update

	failUpdateFor string
	failCreate    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: map[string][]tasks.Update{}}
}

func (s *fakeStore) CreateTask(_ context.Context, draft tasks.Draft) (string, error) {
	if s.failCreate {
		return "", errors.New("create failed")
	}
	s.created = append(s.created, draft)
	return fmt.Sprintf("new-%d", len(s.created)), nil
}

func (s *fakeStore) UpdateTask(_ context.Context, id string, update tasks.Update) error {
	if id == s.failUpdateFor {
		return errors.New("update failed")
	}
	s.updates[id] = append(s.updates[id], update)
	return nil
}

var applyNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMerger(store Store) *Merger {
	return &Merger{Store: store, Now: func() time.Time { return applyNow }}
}

func TestApplyStatusUpdateCompletesTask(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	existing := []tasks.Task{{ID: "task-1", Description: "Redesign homepage banner"}}

	analysis := Analysis{
		ActionItems: []ActionItem{{
			Description:    "Redesign homepage banner is completed",
			IsStatusUpdate: true,
			RelatedTaskID:  "task-1",
			Status:         "completed",
		}},
		// пересечение с mentioned не должно дать дубликат
		MentionedTaskIDs: []string{"task-1"},
	}

	result := newMerger(store).Apply(context.Background(), analysis, existing)

	if len(result.UpdatedTaskIDs) != 1 || result.UpdatedTaskIDs[0] != "task-1" {
		t.Fatalf("updated ids = %v, want exactly [task-1]", result.UpdatedTaskIDs)
	}

	updates := store.updates["task-1"]
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	upd := updates[0]

	if upd.Status == nil || *upd.Status != tasks.StatusCompleted {
		t.Error("status must become completed")
	}
	if upd.MentionedInMeeting == nil || *upd.MentionedInMeeting != tasks.Yes {
		t.Error("mentioned_in_meeting must be set to Yes")
	}
	if upd.LastMentioned == nil || *upd.LastMentioned != applyNow.Format(time.RFC3339) {
		t.Error("last_mentioned must be set to now")
	}
	if upd.AddComment == nil {
		t.Fatal("a comment must be appended")
	}
	if upd.AddComment.Author != CommentAuthor {
		t.Errorf("comment author = %q, want %q", upd.AddComment.Author, CommentAuthor)
	}
	wantText := "Status update from meeting: Redesign homepage banner is completed (Status: completed)"
	if upd.AddComment.Text != wantText {
		t.Errorf("comment text = %q, want %q", upd.AddComment.Text, wantText)
	}
}

func TestApplyDelayedLeavesStatusUntouched(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	existing := []tasks.Task{{ID: "task-1", Description: "Vendor contract review"}}

	analysis := Analysis{
		ActionItems: []ActionItem{{
			Description:    "Vendor contract review is behind schedule",
			IsStatusUpdate: true,
			RelatedTaskID:  "task-1",
			Status:         "delayed",
		}},
	}

	newMerger(store).Apply(context.Background(), analysis, existing)

	updates := store.updates["task-1"]
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	if updates[0].Status != nil {
		t.Errorf("delayed has no task status target, got %v", *updates[0].Status)
	}
	if updates[0].AddComment == nil || !strings.Contains(updates[0].AddComment.Text, "(Status: delayed)") {
		t.Error("comment must still record the delayed status")
	}
}

func TestApplyDropsUnresolvableStatusUpdate(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	existing := []tasks.Task{{ID: "task-1", Description: "Real task"}}

	analysis := Analysis{
		ActionItems: []ActionItem{
			{Description: "ghost update", IsStatusUpdate: true, RelatedTaskID: "no-such-task"},
			{Description: "Sarah will plan the launch event"},
		},
	}

	result := newMerger(store).Apply(context.Background(), analysis, existing)

	if len(result.UpdatedTaskIDs) != 0 {
		t.Errorf("unresolvable update must be dropped, got %v", result.UpdatedTaskIDs)
	}
	// остальные элементы обрабатываются несмотря на сброшенный
	if len(result.NewTaskDescriptions) != 1 {
		t.Errorf("new tasks = %v, want the launch event item", result.NewTaskDescriptions)
	}
}

func TestApplyCreatesNewTasks(t *testing.T) {
	t.Parallel()

	store := newFakeStore()

	analysis := Analysis{
		ActionItems: []ActionItem{
			{Description: "Team must decide on the new vendor"},
			{Description: "Follow up on the security audit", Owner: "Nina", DueDate: "2025-06-15"},
			{Description: "Draft the migration plan"},
		},
	}

	result := newMerger(store).Apply(context.Background(), analysis, nil)

	if len(store.created) != 3 {
		t.Fatalf("created %d tasks, want 3", len(store.created))
	}
	if len(result.NewTaskDescriptions) != 3 {
		t.Fatalf("result lists %d new tasks, want 3", len(result.NewTaskDescriptions))
	}

	decide := store.created[0]
	if decide.Type != tasks.TypeDecision {
		t.Errorf("decide item type = %v, want Decision", decide.Type)
	}
	if decide.Owner != "Unassigned" || decide.Project != "Extracted from Meeting" {
		t.Errorf("defaults not applied: owner=%q project=%q", decide.Owner, decide.Project)
	}
	// срок не указан — дефолт "через неделю"
	wantDue := applyNow.AddDate(0, 0, 7).Format(time.RFC3339)
	if decide.DueDate != wantDue {
		t.Errorf("due date = %q, want %q", decide.DueDate, wantDue)
	}
	if decide.MentionedInMeeting != tasks.Yes || decide.FollowUpScheduled != tasks.No {
		t.Error("new tasks must be marked mentioned=Yes, follow-up=No")
	}

	followUp := store.created[1]
	if followUp.Type != tasks.TypeFollowUp {
		t.Errorf("follow-up item type = %v, want Follow-up", followUp.Type)
	}
	if followUp.Owner != "Nina" {
		t.Errorf("owner = %q, want Nina", followUp.Owner)
	}
	if followUp.DueDate != "2025-06-15T00:00:00Z" {
		t.Errorf("due date = %q, want normalized 2025-06-15", followUp.DueDate)
	}

	if store.created[2].Type != tasks.TypeTask {
		t.Errorf("plain item type = %v, want Task", store.created[2].Type)
	}
}

func TestApplyMentionedOnlyPassAppendsAfterItems(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	existing := []tasks.Task{
		{ID: "task-1", Description: "First"},
		{ID: "task-2", Description: "Second"},
	}

	analysis := Analysis{
		ActionItems: []ActionItem{
			{Description: "first update", IsStatusUpdate: true, RelatedTaskID: "task-1"},
		},
		MentionedTaskIDs: []string{"task-1", "task-2", "missing"},
	}

	result := newMerger(store).Apply(context.Background(), analysis, existing)

	want := []string{"task-1", "task-2"}
	if len(result.UpdatedTaskIDs) != len(want) {
		t.Fatalf("updated = %v, want %v", result.UpdatedTaskIDs, want)
	}
	for i, id := range want {
		if result.UpdatedTaskIDs[i] != id {
			t.Errorf("updated[%d] = %q, want %q", i, result.UpdatedTaskIDs[i], id)
		}
	}

	// mentioned-only апдейт не добавляет комментарий
	if len(store.updates["task-2"]) != 1 || store.updates["task-2"][0].AddComment != nil {
		t.Errorf("mentioned-only update must only touch mention fields: %+v", store.updates["task-2"])
	}
}

func TestApplyCollaboratorFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.failUpdateFor = "task-1"
	existing := []tasks.Task{
		{ID: "task-1", Description: "First"},
		{ID: "task-2", Description: "Second"},
	}

	analysis := Analysis{
		ActionItems: []ActionItem{
			{Description: "first update", IsStatusUpdate: true, RelatedTaskID: "task-1"},
			{Description: "second update", IsStatusUpdate: true, RelatedTaskID: "task-2"},
		},
	}

	result := newMerger(store).Apply(context.Background(), analysis, existing)

	if len(result.UpdatedTaskIDs) != 1 || result.UpdatedTaskIDs[0] != "task-2" {
		t.Errorf("updated = %v, want [task-2] despite task-1 failure", result.UpdatedTaskIDs)
	}
}

func TestDetermineTypeKeywords(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		want tasks.Type
	}{
		{"choose a hosting provider", tasks.TypeDecision},
		{"final decision on pricing", tasks.TypeDecision},
		{"check in with legal next week", tasks.TypeFollowUp},
		{"update on the hiring pipeline", tasks.TypeFollowUp},
		{"write the onboarding guide", tasks.TypeTask},
	}

	for _, tc := range cases {
		if got := DetermineType(tc.desc); got != tc.want {
			t.Errorf("DetermineType(%q) = %v, want %v", tc.desc, got, tc.want)
		}
	}
}
