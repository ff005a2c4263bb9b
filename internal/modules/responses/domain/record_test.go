package domain

import (
	"testing"
	"time"
)

func TestMergeDerivesPercentageAndKeepsStartTime(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := NewRecord("s1", start)
	later := start.Add(time.Minute)
	rec.Merge(map[string]map[string]any{
		"demographics":       {"age": float64(21)},
		"gaming_preferences": {"platforms": []any{"PC"}},
	}, "gaming_habits", later)

	if rec.UserInfo.CompletionPercentage != 33 {
		t.Fatalf("expected 33%%, got %d", rec.UserInfo.CompletionPercentage)
	}
	if !rec.UserInfo.StartTime.Equal(start) || !rec.UserInfo.LastUpdated.Equal(later) {
		t.Fatalf("unexpected timestamps %+v", rec.UserInfo)
	}
	if rec.UserInfo.CurrentSection != "gaming_habits" {
		t.Fatalf("expected current section to move, got %q", rec.UserInfo.CurrentSection)
	}

	rec.Merge(map[string]map[string]any{"demographics": {"age": float64(30)}}, "", later.Add(time.Minute))
	if rec.Sections["demographics"]["age"] != float64(30) || rec.Sections["gaming_preferences"] == nil {
		t.Fatalf("merge must overwrite one section and keep the rest, got %v", rec.Sections)
	}
	if rec.UserInfo.CurrentSection != "gaming_habits" {
		t.Fatalf("empty current section must not clear it")
	}
}

func TestMarkCompletedStampsOnce(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := NewRecord("s1", start)
	if !rec.MarkCompleted(start.Add(time.Hour)) {
		t.Fatalf("first completion must transition")
	}
	first := *rec.UserInfo.CompletionTime
	if rec.MarkCompleted(start.Add(2 * time.Hour)) {
		t.Fatalf("second completion must be a no-op")
	}
	if !rec.UserInfo.CompletionTime.Equal(first) || rec.UserInfo.CompletionStatus != StatusCompleted {
		t.Fatalf("completion time restamped: %v", rec.UserInfo.CompletionTime)
	}
}

func TestValidateUpsert(t *testing.T) {
	t.Parallel()
	if err := ValidateUpsert("", nil, ""); err == nil {
		t.Fatalf("expected missing id error")
	}
	if err := ValidateUpsert("s1", map[string]map[string]any{"hobbies": {}}, ""); err == nil {
		t.Fatalf("expected unknown section error")
	}
	if err := ValidateUpsert("s1", map[string]map[string]any{"gaming_family": {}}, "future_gaming"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSortByLastUpdatedNewestFirst(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		NewRecord("a", base),
		NewRecord("c", base.Add(2*time.Minute)),
		NewRecord("b", base.Add(2*time.Minute)),
	}
	SortByLastUpdated(records)
	got := records[0].ID + records[1].ID + records[2].ID
	if got != "bca" {
		t.Fatalf("expected bca, got %s", got)
	}
}
