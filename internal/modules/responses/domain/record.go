package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	apperrors "kreosurvey/internal/platform/errors"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// SectionKeys are the document fields holding answers, in survey order.
var SectionKeys = []string{
	"demographics",
	"gaming_preferences",
	"gaming_habits",
	"gaming_lifestyle",
	"gaming_family",
	"future_gaming",
}

type UserInfo struct {
	SessionID            string
	StartTime            time.Time
	LastUpdated          time.Time
	CompletionStatus     Status
	CompletionPercentage int
	CurrentSection       string
	CompletionTime       *time.Time
}

// Record is one respondent's response document.
type Record struct {
	ID       string
	UserInfo UserInfo
	Sections map[string]map[string]any
}

func IsSection(key string) bool {
	for _, k := range SectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// NewRecord starts an in-progress record stamped at now.
func NewRecord(id string, now time.Time) Record {
	return Record{
		ID: id,
		UserInfo: UserInfo{
			SessionID:        id,
			StartTime:        now,
			LastUpdated:      now,
			CompletionStatus: StatusInProgress,
		},
		Sections: map[string]map[string]any{},
	}
}

// ValidateUpsert checks a partial write before it touches the store.
func ValidateUpsert(id string, sections map[string]map[string]any, currentSection string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	for key := range sections {
		if !IsSection(key) {
			return fmt.Errorf("%w: unknown section %q", apperrors.ErrInvalidInput, key)
		}
	}
	if currentSection != "" && !IsSection(currentSection) {
		return fmt.Errorf("%w: unknown current section %q", apperrors.ErrInvalidInput, currentSection)
	}
	return nil
}

// Merge overwrites the provided section fields and refreshes the derived
// metadata. start_time and completion state are left alone.
func (r *Record) Merge(sections map[string]map[string]any, currentSection string, now time.Time) {
	if r.Sections == nil {
		r.Sections = map[string]map[string]any{}
	}
	for key, answers := range sections {
		copied := make(map[string]any, len(answers))
		for k, v := range answers {
			copied[k] = v
		}
		r.Sections[key] = copied
	}
	if currentSection != "" {
		r.UserInfo.CurrentSection = currentSection
	}
	r.UserInfo.LastUpdated = now
	r.UserInfo.CompletionPercentage = CompletionPercentage(r.Sections)
}

// MarkCompleted moves the record to completed once. It reports false when
// the record was already completed; completion_time is never restamped.
func (r *Record) MarkCompleted(now time.Time) bool {
	if r.UserInfo.CompletionStatus == StatusCompleted {
		return false
	}
	r.UserInfo.CompletionStatus = StatusCompleted
	completedAt := now
	r.UserInfo.CompletionTime = &completedAt
	r.UserInfo.LastUpdated = now
	r.UserInfo.CompletionPercentage = CompletionPercentage(r.Sections)
	return true
}

// CompletionPercentage is round(100 * present sections / 6).
func CompletionPercentage(sections map[string]map[string]any) int {
	present := 0
	for _, key := range SectionKeys {
		if _, ok := sections[key]; ok {
			present++
		}
	}
	return int(math.Round(100 * float64(present) / float64(len(SectionKeys))))
}

// SortByLastUpdated orders records newest first. Ties keep id order so the
// listing is stable.
func SortByLastUpdated(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].UserInfo.LastUpdated, records[j].UserInfo.LastUpdated
		if a.Equal(b) {
			return records[i].ID < records[j].ID
		}
		return a.After(b)
	})
}
