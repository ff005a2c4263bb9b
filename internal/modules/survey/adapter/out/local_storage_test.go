package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	surveyadapter "kreosurvey/internal/modules/survey/adapter/out"
	"kreosurvey/internal/platform/logging"
)

func TestFileLocalStorageSetGetRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	store := surveyadapter.NewFileLocalStorage(dir, logging.Discard())

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key without error, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "kreo_survey_current_section", "gaming_habits"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "kreo_survey_session_id", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := surveyadapter.NewFileLocalStorage(dir, logging.Discard())
	v, ok, err := reopened.Get(ctx, "kreo_survey_current_section")
	if err != nil || !ok || v != "gaming_habits" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}

	if err := reopened.Remove(ctx, "kreo_survey_current_section", "never_set"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "kreo_survey_current_section"); ok {
		t.Fatalf("expected key to be removed")
	}
	if v, _, _ := reopened.Get(ctx, "kreo_survey_session_id"); v != "abc" {
		t.Fatalf("unrelated keys must survive removal, got %q", v)
	}
}

func TestFileLocalStorageStartsEmptyOverUnreadableFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "local-storage.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := surveyadapter.NewFileLocalStorage(dir, logging.Discard())
	if _, ok, err := store.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("expected unreadable file kept aside: %v", err)
	}
	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set after recovery: %v", err)
	}
	reopened := surveyadapter.NewFileLocalStorage(dir, logging.Discard())
	if v, ok, err := reopened.Get(ctx, "k"); err != nil || !ok || v != "v" {
		t.Fatalf("expected fresh file to persist, got %q ok=%v err=%v", v, ok, err)
	}
}
