package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	surveydto "kreosurvey/internal/modules/survey/dto"
)

type fakeSurvey struct {
	start     surveydto.StartOutput
	calls     []string
	submitted map[string]any
	left      bool
}

func (f *fakeSurvey) Start(context.Context) (surveydto.StartOutput, error) {
	f.calls = append(f.calls, "start")
	return f.start, nil
}

func (f *fakeSurvey) Resume(context.Context) (surveydto.ScreenOutput, error) {
	f.calls = append(f.calls, "resume")
	return f.start.Screen, nil
}

func (f *fakeSurvey) StartOver(context.Context) (surveydto.ScreenOutput, error) {
	f.calls = append(f.calls, "start_over")
	return surveydto.ScreenOutput{Section: "demographics", Screen: "demographics", Title: "Demographics"}, nil
}

func (f *fakeSurvey) Submit(_ context.Context, screen string, answers map[string]any) (surveydto.ScreenOutput, error) {
	f.calls = append(f.calls, "submit:"+screen)
	f.submitted = answers
	return surveydto.ScreenOutput{Section: "future_gaming", Screen: "future_gaming", Completed: true}, nil
}

func (f *fakeSurvey) Back(context.Context) (surveydto.ScreenOutput, error) {
	return f.start.Screen, nil
}

func (f *fakeSurvey) JumpTo(context.Context, string) (surveydto.ScreenOutput, error) {
	return f.start.Screen, nil
}

func (f *fakeSurvey) SaveStatus(context.Context) surveydto.SaveStatusOutput {
	return surveydto.SaveStatusOutput{}
}

func (f *fakeSurvey) Leave(context.Context) error {
	f.left = true
	return nil
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func surveyStep(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func habitsScreen() surveydto.ScreenOutput {
	return surveydto.ScreenOutput{
		Section: "gaming_habits",
		Screen:  "gaming_habits",
		Title:   "Gaming Habits",
		Questions: []surveydto.QuestionOutput{
			{Key: "hours_per_week", Prompt: "Hours per week", Kind: "number", Required: true},
		},
		Answers: map[string]any{"hours_per_week": "12"},
	}
}

func TestResumePromptStartOver(t *testing.T) {
	t.Parallel()
	port := &fakeSurvey{start: surveydto.StartOutput{Screen: habitsScreen(), ShowResumePrompt: true}}
	m := NewModel(port)
	m, _ = surveyStep(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = surveyStep(t, m, m.startCmd()())
	if !m.dialog.Visible() {
		t.Fatalf("expected resume prompt")
	}
	if !contains(m.View(), "Gaming Habits") {
		t.Fatalf("expected prompt to name the section")
	}

	m, cmd := surveyStep(t, m, runes("n"))
	m, cmd = surveyStep(t, m, cmd())
	m, _ = surveyStep(t, m, cmd())
	if port.calls[len(port.calls)-1] != "start_over" {
		t.Fatalf("expected start over, got %v", port.calls)
	}
	if m.form.Screen().Screen != "demographics" {
		t.Fatalf("expected demographics after starting over, got %s", m.form.Screen().Screen)
	}
}

func TestSubmitLastSectionShowsThanks(t *testing.T) {
	t.Parallel()
	port := &fakeSurvey{start: surveydto.StartOutput{Screen: habitsScreen()}}
	m := NewModel(port)
	m, _ = surveyStep(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = surveyStep(t, m, m.startCmd()())
	if m.stage != stageForm {
		t.Fatalf("expected the form without a resume prompt")
	}

	m, cmd := surveyStep(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = surveyStep(t, m, cmd())
	m, _ = surveyStep(t, m, cmd())
	if port.submitted["hours_per_week"] != "12" {
		t.Fatalf("expected prefilled answer submitted, got %v", port.submitted)
	}
	if m.stage != stageThanks || !contains(m.View(), "Thank you") {
		t.Fatalf("expected thank-you screen")
	}

	_, cmd = surveyStep(t, m, runes("q"))
	if _, ok := cmd().(leftMsg); !ok || !port.left {
		t.Fatalf("expected leave before quitting")
	}
}
