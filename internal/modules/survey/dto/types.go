package dto

import "time"

type QuestionOutput struct {
	Key      string
	Prompt   string
	Kind     string
	Options  []string
	Required bool
}

type ProgressOutput struct {
	Step     int
	Total    int
	Label    string
	Fraction float64
}

type SectionOutput struct {
	Name     string
	Label    string
	Answered bool
}

type SaveStatusOutput struct {
	IsSaving  bool
	LastSaved time.Time
	LastError string
	SessionID string
}

type ScreenOutput struct {
	Section              string
	Screen               string
	Title                string
	Questions            []QuestionOutput
	Answers              map[string]any
	Progress             ProgressOutput
	Sections             []SectionOutput
	CompletionPercentage int
	Completed            bool
}

type StartOutput struct {
	Screen           ScreenOutput
	ShowResumePrompt bool
}

type SubmitInput struct {
	Screen  string
	Answers map[string]any
}

type StatusOutput struct {
	SessionID            string              `json:"session_id"`
	CurrentSection       string              `json:"current_section"`
	AnsweredSections     []string            `json:"answered_sections"`
	CompletionPercentage int                 `json:"completion_percentage"`
	NavigatedAway        bool                `json:"navigated_away"`
	Completed            bool                `json:"completed"`
	Remote               *RemoteStatusOutput `json:"remote,omitempty"`
}

type RemoteStatusOutput struct {
	CompletionStatus     string    `json:"completion_status"`
	CompletionPercentage int       `json:"completion_percentage"`
	CurrentSection       string    `json:"current_section"`
	LastUpdated          time.Time `json:"last_updated"`
}
