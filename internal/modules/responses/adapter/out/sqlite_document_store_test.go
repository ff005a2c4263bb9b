package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	responsesadapter "kreosurvey/internal/modules/responses/adapter/out"
	"kreosurvey/internal/modules/responses/domain"
	apperrors "kreosurvey/internal/platform/errors"
)

func openStore(t *testing.T, path string) *responsesadapter.SQLiteDocumentStore {
	t.Helper()
	store, err := responsesadapter.NewSQLiteDocumentStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteDocumentStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "responses.db")
	store := openStore(t, path)
	now := time.Date(2026, 3, 1, 9, 0, 0, 123, time.UTC)

	created, err := store.Mutate(ctx, "s1", func(record domain.Record, found bool) (domain.Record, error) {
		if found {
			t.Fatalf("expected fresh record")
		}
		record = domain.NewRecord("s1", now)
		record.Merge(map[string]map[string]any{
			"demographics": {"age": float64(21), "platforms": []any{"PC", "Mobile"}},
		}, "gaming_preferences", now)
		return record, nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.UserInfo.CompletionPercentage != 17 {
		t.Fatalf("expected 17%%, got %d", created.UserInfo.CompletionPercentage)
	}

	_, err = store.Mutate(ctx, "s1", func(record domain.Record, found bool) (domain.Record, error) {
		if !found {
			t.Fatalf("expected existing record")
		}
		record.MarkCompleted(now.Add(time.Hour))
		return record, nil
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	reopened := openStore(t, path)
	got, err := reopened.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.UserInfo.StartTime.Equal(now) || got.UserInfo.CompletionTime == nil {
		t.Fatalf("timestamps lost: %+v", got.UserInfo)
	}
	if got.UserInfo.CompletionStatus != domain.StatusCompleted || got.UserInfo.CurrentSection != "gaming_preferences" {
		t.Fatalf("unexpected user info %+v", got.UserInfo)
	}
	want := map[string]any{"age": float64(21), "platforms": []any{"PC", "Mobile"}}
	if !reflect.DeepEqual(got.Sections["demographics"], want) {
		t.Fatalf("sections changed: %v", got.Sections)
	}
}

func TestSQLiteDocumentStoreMutateErrorLeavesRowUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "responses.db"))
	boom := errors.New("boom")
	if _, err := store.Mutate(ctx, "s1", func(domain.Record, bool) (domain.Record, error) {
		return domain.Record{}, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestSQLiteDocumentStoreListAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "responses.db"))
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if _, err := store.Mutate(ctx, id, func(domain.Record, bool) (domain.Record, error) {
			return domain.NewRecord(id, at), nil
		}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 || records[0].ID != "c" {
		t.Fatalf("expected three records newest first, got %+v", records)
	}
	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "b"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	records, err = store.List(ctx)
	if err != nil || len(records) != 2 {
		t.Fatalf("expected two records after delete, got %d err=%v", len(records), err)
	}
}
