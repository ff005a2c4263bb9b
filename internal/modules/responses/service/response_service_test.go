package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"kreosurvey/internal/modules/responses/domain"
	responsesout "kreosurvey/internal/modules/responses/port/out"
	"kreosurvey/internal/modules/responses/service"
	apperrors "kreosurvey/internal/platform/errors"
	"kreosurvey/internal/platform/logging"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]domain.Record
	listErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]domain.Record{}}
}

func (m *memoryStore) Mutate(_ context.Context, id string, fn responsesout.MutateFunc) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, found := m.records[id]
	next, err := fn(current, found)
	if err != nil {
		return domain.Record{}, err
	}
	m.records[id] = next
	return next, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: response %s", apperrors.ErrNotFound, id)
	}
	return record, nil
}

func (m *memoryStore) List(context.Context) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Record, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, record)
	}
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: response %s", apperrors.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func newService() (*service.ResponseService, *memoryStore) {
	store := newMemoryStore()
	clk := &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return service.NewResponseService(clk, store, logging.Discard()), store
}

func TestUpsertCreatesThenMerges(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	ctx := context.Background()
	first, err := svc.Upsert(ctx, "s1", map[string]map[string]any{"demographics": {"age": float64(21)}}, "gaming_preferences")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.UserInfo.SessionID != "s1" || first.UserInfo.CompletionStatus != domain.StatusInProgress {
		t.Fatalf("unexpected user info %+v", first.UserInfo)
	}
	second, err := svc.Upsert(ctx, "s1", map[string]map[string]any{"gaming_preferences": {"genres": []any{"FPS"}}}, "gaming_habits")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !second.UserInfo.StartTime.Equal(first.UserInfo.StartTime) {
		t.Fatalf("start time must survive later writes")
	}
	if !second.UserInfo.LastUpdated.After(first.UserInfo.LastUpdated) {
		t.Fatalf("last updated must advance")
	}
	if second.UserInfo.CompletionPercentage != 33 || len(second.Sections) != 2 {
		t.Fatalf("expected merged sections at 33%%, got %d with %v", second.UserInfo.CompletionPercentage, second.Sections)
	}
	if _, err := svc.Upsert(ctx, "s1", map[string]map[string]any{"favourite_snack": {}}, ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown section, got %v", err)
	}
}

func TestMarkCompletedRequiresExistingRecord(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	ctx := context.Background()
	if _, err := svc.MarkCompleted(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Upsert(ctx, "s1", map[string]map[string]any{"future_gaming": {"wish": "VR"}}, "future_gaming"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	done, err := svc.MarkCompleted(ctx, "s1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.UserInfo.CompletionStatus != domain.StatusCompleted || done.UserInfo.CompletionTime == nil {
		t.Fatalf("expected completed record, got %+v", done.UserInfo)
	}
	again, err := svc.MarkCompleted(ctx, "s1")
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !again.UserInfo.CompletionTime.Equal(*done.UserInfo.CompletionTime) {
		t.Fatalf("completion time must not move")
	}
}

func TestListNewestFirstAndDetailFallback(t *testing.T) {
	t.Parallel()
	svc, store := newService()
	ctx := context.Background()
	for _, id := range []string{"old", "mid", "new"} {
		if _, err := svc.Upsert(ctx, id, map[string]map[string]any{"demographics": {"age": float64(30)}}, ""); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if records[0].ID != "new" || records[2].ID != "old" {
		t.Fatalf("expected newest first, got %s..%s", records[0].ID, records[2].ID)
	}

	summary := records[1]
	if err := svc.Delete(ctx, "mid"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	detail, fromSummary, err := svc.Detail(ctx, "mid", &summary)
	if err != nil || !fromSummary || detail.ID != "mid" {
		t.Fatalf("expected summary fallback, got %+v fromSummary=%v err=%v", detail, fromSummary, err)
	}
	if _, _, err := svc.Detail(ctx, "mid", nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found without a summary, got %v", err)
	}
	if err := svc.Delete(ctx, "mid"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	store.listErr = errors.New("disk gone")
	if _, _, err := svc.ExportCSV(ctx, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected export to surface list failure")
	}
}

func TestExportCSVUsesFreshListing(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	ctx := context.Background()
	if _, err := svc.Upsert(ctx, "a", map[string]map[string]any{"demographics": {"city": "Pune"}}, ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	var first bytes.Buffer
	if _, _, err := svc.ExportCSV(ctx, &first); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := svc.Upsert(ctx, "b", map[string]map[string]any{"future_gaming": {"wish": `He said "go"`}}, ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	var second bytes.Buffer
	rows, cols, err := svc.ExportCSV(ctx, &second)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if rows != 2 || !strings.Contains(second.String(), "future_gaming.wish") {
		t.Fatalf("expected second export to include new record, rows=%d cols=%d\n%s", rows, cols, second.String())
	}
	if strings.Contains(first.String(), "future_gaming.wish") {
		t.Fatalf("first export must not know about later records")
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.InProgress != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
