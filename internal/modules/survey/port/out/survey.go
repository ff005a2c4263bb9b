package out

import (
	"context"
	"time"

	"kreosurvey/internal/modules/survey/domain"
)

// LocalMirror is a string key/value store that survives restarts.
// Get reports false for absent keys.
type LocalMirror interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Draft is the upsert payload pushed to the remote store.
type Draft struct {
	SessionID      string
	Sections       domain.Responses
	CurrentSection domain.Section
}

// RemoteRecord is the remote view of a session used for status reporting.
type RemoteRecord struct {
	SessionID            string
	CompletionStatus     string
	CompletionPercentage int
	CurrentSection       string
	LastUpdated          time.Time
}

// ResponseStore is the remote document store as seen by the respondent.
type ResponseStore interface {
	Upsert(ctx context.Context, draft Draft) error
	MarkCompleted(ctx context.Context, sessionID string) error
	Fetch(ctx context.Context, sessionID string) (RemoteRecord, error)
}
