package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kreosurvey/internal/modules/responses/domain"
	responsesout "kreosurvey/internal/modules/responses/port/out"
	apperrors "kreosurvey/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// SQLiteDocumentStore keeps one JSON document per respondent in the
// survey_responses table. The indexed columns mirror user_info for listing.
type SQLiteDocumentStore struct {
	db *sql.DB
}

type storedUserInfo struct {
	SessionID            string `json:"session_id"`
	StartTime            string `json:"start_time"`
	LastUpdated          string `json:"last_updated"`
	CompletionStatus     string `json:"completion_status"`
	CompletionPercentage int    `json:"completion_percentage"`
	CurrentSection       string `json:"current_section"`
	CompletionTime       string `json:"completion_time,omitempty"`
}

type storedDocument struct {
	UserInfo storedUserInfo            `json:"user_info"`
	Sections map[string]map[string]any `json:"sections"`
}

func NewSQLiteDocumentStore(dbPath string) (*SQLiteDocumentStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteDocumentStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ responsesout.DocumentStore = (*SQLiteDocumentStore)(nil)

func (s *SQLiteDocumentStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS survey_responses (
  id TEXT PRIMARY KEY,
  document TEXT NOT NULL,
  completion_status TEXT NOT NULL,
  last_updated TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS survey_responses_last_updated ON survey_responses(last_updated);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create survey_responses table: %w", err)
	}
	return nil
}

func (s *SQLiteDocumentStore) Close() error {
	return s.db.Close()
}

// Mutate reads, transforms and writes one document inside a transaction.
func (s *SQLiteDocumentStore) Mutate(ctx context.Context, id string, fn responsesout.MutateFunc) (domain.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Record{}, fmt.Errorf("begin mutate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	found := true
	err = tx.QueryRowContext(ctx, `SELECT document FROM survey_responses WHERE id = ?`, id).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		found = false
	case err != nil:
		return domain.Record{}, fmt.Errorf("load response %s: %w", id, err)
	}
	var current domain.Record
	if found {
		current, err = decodeDocument(id, raw)
		if err != nil {
			return domain.Record{}, err
		}
	}

	next, err := fn(current, found)
	if err != nil {
		return domain.Record{}, err
	}
	next.ID = id
	encoded, err := encodeDocument(next)
	if err != nil {
		return domain.Record{}, err
	}
	const stmt = `
INSERT INTO survey_responses (id, document, completion_status, last_updated)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  document=excluded.document,
  completion_status=excluded.completion_status,
  last_updated=excluded.last_updated;
`
	if _, err := tx.ExecContext(ctx, stmt, id, encoded, string(next.UserInfo.CompletionStatus), formatTime(next.UserInfo.LastUpdated)); err != nil {
		return domain.Record{}, fmt.Errorf("write response %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Record{}, fmt.Errorf("commit response %s: %w", id, err)
	}
	return next, nil
}

func (s *SQLiteDocumentStore) Get(ctx context.Context, id string) (domain.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM survey_responses WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("%w: response %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("load response %s: %w", id, err)
	}
	return decodeDocument(id, raw)
}

func (s *SQLiteDocumentStore) List(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM survey_responses ORDER BY last_updated DESC`)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	out := []domain.Record{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		record, err := decodeDocument(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return out, nil
}

func (s *SQLiteDocumentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM survey_responses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete response %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete response %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: response %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func encodeDocument(record domain.Record) (string, error) {
	info := record.UserInfo
	doc := storedDocument{
		UserInfo: storedUserInfo{
			SessionID:            info.SessionID,
			StartTime:            formatTime(info.StartTime),
			LastUpdated:          formatTime(info.LastUpdated),
			CompletionStatus:     string(info.CompletionStatus),
			CompletionPercentage: info.CompletionPercentage,
			CurrentSection:       info.CurrentSection,
		},
		Sections: record.Sections,
	}
	if info.CompletionTime != nil {
		doc.UserInfo.CompletionTime = formatTime(*info.CompletionTime)
	}
	if doc.Sections == nil {
		doc.Sections = map[string]map[string]any{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode response %s: %w", record.ID, err)
	}
	return string(raw), nil
}

func decodeDocument(id, raw string) (domain.Record, error) {
	var doc storedDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.Record{}, fmt.Errorf("decode response %s: %w", id, err)
	}
	record := domain.Record{
		ID: id,
		UserInfo: domain.UserInfo{
			SessionID:            doc.UserInfo.SessionID,
			StartTime:            parseTime(doc.UserInfo.StartTime),
			LastUpdated:          parseTime(doc.UserInfo.LastUpdated),
			CompletionStatus:     domain.Status(doc.UserInfo.CompletionStatus),
			CompletionPercentage: doc.UserInfo.CompletionPercentage,
			CurrentSection:       doc.UserInfo.CurrentSection,
		},
		Sections: doc.Sections,
	}
	if doc.UserInfo.CompletionTime != "" {
		completed := parseTime(doc.UserInfo.CompletionTime)
		record.UserInfo.CompletionTime = &completed
	}
	if record.Sections == nil {
		record.Sections = map[string]map[string]any{}
	}
	return record, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
