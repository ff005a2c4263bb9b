package dto

import "time"

type UpsertInput struct {
	ID             string
	Sections       map[string]map[string]any
	CurrentSection string
}

type UserInfoOutput struct {
	SessionID            string     `json:"session_id"`
	StartTime            time.Time  `json:"start_time"`
	LastUpdated          time.Time  `json:"last_updated"`
	CompletionStatus     string     `json:"completion_status"`
	CompletionPercentage int        `json:"completion_percentage"`
	CurrentSection       string     `json:"current_section"`
	CompletionTime       *time.Time `json:"completion_time,omitempty"`
}

type RecordOutput struct {
	ID       string                    `json:"id"`
	UserInfo UserInfoOutput            `json:"user_info"`
	Sections map[string]map[string]any `json:"sections"`
}

// DetailInput carries the summary the caller already holds, used when the
// record has disappeared from the store.
type DetailInput struct {
	ID      string
	Summary *RecordOutput
}

type DetailOutput struct {
	Record      RecordOutput `json:"record"`
	FromSummary bool         `json:"from_summary"`
}

type StatsOutput struct {
	Total             int            `json:"total"`
	Completed         int            `json:"completed"`
	InProgress        int            `json:"in_progress"`
	AveragePercentage float64        `json:"average_percentage"`
	SectionCounts     map[string]int `json:"section_counts"`
}

type ExportOutput struct {
	Records int
	Columns int
}
