package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	responsesdto "kreosurvey/internal/modules/responses/dto"
	surveydto "kreosurvey/internal/modules/survey/dto"
	"kreosurvey/internal/ui/views/dashboard"
)

type fakeResponses struct {
	deleted   []string
	deleteErr error
	exported  string
}

func (f *fakeResponses) List(context.Context) ([]responsesdto.RecordOutput, error) {
	return nil, nil
}

func (f *fakeResponses) Detail(_ context.Context, id string, summary *responsesdto.RecordOutput) (responsesdto.DetailOutput, error) {
	return responsesdto.DetailOutput{Record: *summary}, nil
}

func (f *fakeResponses) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeResponses) ExportFile(_ context.Context, path string) (responsesdto.ExportOutput, error) {
	f.exported = path
	return responsesdto.ExportOutput{Records: 2, Columns: 9}, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func adminStep(t *testing.T, m AdminModel, msg tea.Msg) (AdminModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(AdminModel), cmd
}

func loadedAdmin(t *testing.T, port *fakeResponses) AdminModel {
	t.Helper()
	m := NewAdminModel(port)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	m, _ = adminStep(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = adminStep(t, m, dashboard.RecordsLoadedMsg{Records: []responsesdto.RecordOutput{{ID: "a"}, {ID: "b"}}})
	return m
}

func TestAdminDeleteAsksBeforeRemoving(t *testing.T) {
	t.Parallel()
	port := &fakeResponses{}
	m := loadedAdmin(t, port)

	m, _ = adminStep(t, m, runes("d"))
	if !m.dialog.Visible() {
		t.Fatalf("expected delete confirmation")
	}
	if len(port.deleted) != 0 {
		t.Fatalf("nothing may be deleted before confirming")
	}
	m, cmd := adminStep(t, m, runes("y"))
	m, cmd = adminStep(t, m, cmd())
	m, _ = adminStep(t, m, cmd())
	if len(port.deleted) != 1 || port.deleted[0] != "a" {
		t.Fatalf("expected a deleted, got %v", port.deleted)
	}
	if m.dashboard.Count() != 1 {
		t.Fatalf("expected one record left, got %d", m.dashboard.Count())
	}
}

func TestAdminDeleteFailureShowsAlert(t *testing.T) {
	t.Parallel()
	port := &fakeResponses{deleteErr: errors.New("permission denied")}
	m := loadedAdmin(t, port)

	m, _ = adminStep(t, m, runes("d"))
	m, cmd := adminStep(t, m, runes("y"))
	m, cmd = adminStep(t, m, cmd())
	m, _ = adminStep(t, m, cmd())
	if !m.dialog.Visible() {
		t.Fatalf("expected failure alert")
	}
	if m.dashboard.Count() != 2 {
		t.Fatalf("failed delete must keep the record listed")
	}
}

func TestAdminExportUsesDatedFileName(t *testing.T) {
	t.Parallel()
	port := &fakeResponses{}
	m := loadedAdmin(t, port)

	m, cmd := adminStep(t, m, runes("e"))
	m, _ = adminStep(t, m, cmd())
	if port.exported != "kreo-survey-responses-2026-03-01.csv" {
		t.Fatalf("unexpected export path %q", port.exported)
	}
	if m.status != "exported 2 responses to kreo-survey-responses-2026-03-01.csv" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestSaveLabel(t *testing.T) {
	t.Parallel()
	if SaveLabel(surveydto.SaveStatusOutput{}, time.UTC) != "" {
		t.Fatalf("expected no label before the first save")
	}
	saved := SaveLabel(surveydto.SaveStatusOutput{LastSaved: time.Date(2026, 3, 1, 9, 4, 5, 0, time.UTC)}, time.UTC)
	if !contains(saved, "Saved 09:04:05") {
		t.Fatalf("expected saved time, got %q", saved)
	}
	failed := SaveLabel(surveydto.SaveStatusOutput{LastError: "network down"}, time.UTC)
	if !contains(failed, "Not saved yet: network down") {
		t.Fatalf("expected error label, got %q", failed)
	}
}
