package out

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	surveyout "kreosurvey/internal/modules/survey/port/out"
)

// FileLocalStorage keeps string key/value pairs in one JSON file, the
// terminal counterpart of browser local storage. An undecodable file is
// moved aside and the store starts empty.
type FileLocalStorage struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewFileLocalStorage(stateDir string, logger *slog.Logger) surveyout.LocalMirror {
	return &FileLocalStorage{path: filepath.Join(stateDir, "local-storage.json"), logger: logger}
}

func (s *FileLocalStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileLocalStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileLocalStorage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	return s.save(values)
}

func (s *FileLocalStorage) load() (map[string]string, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read local storage: %w", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(payload, &values); err != nil {
		aside := s.path + ".corrupt"
		s.logger.Warn("discarding unreadable local storage", "path", s.path, "moved_to", aside, "error", err)
		if err := os.Rename(s.path, aside); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("move aside local storage: %w", err)
		}
		return map[string]string{}, nil
	}
	return values, nil
}

func (s *FileLocalStorage) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create local storage dir: %w", err)
	}
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal local storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write local storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace local storage: %w", err)
	}
	return nil
}
