package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"kreosurvey/internal/modules/responses/domain"
	responsesout "kreosurvey/internal/modules/responses/port/out"
	"kreosurvey/internal/platform/clock"
	apperrors "kreosurvey/internal/platform/errors"
)

type ResponseService struct {
	clock  clock.Clock
	store  responsesout.DocumentStore
	logger *slog.Logger
}

func NewResponseService(clock clock.Clock, store responsesout.DocumentStore, logger *slog.Logger) *ResponseService {
	return &ResponseService{clock: clock, store: store, logger: logger}
}

// Upsert creates the document on first write and merges section fields
// into it afterwards.
func (s *ResponseService) Upsert(ctx context.Context, id string, sections map[string]map[string]any, currentSection string) (domain.Record, error) {
	if err := domain.ValidateUpsert(id, sections, currentSection); err != nil {
		return domain.Record{}, err
	}
	now := s.clock.Now()
	record, err := s.store.Mutate(ctx, id, func(record domain.Record, found bool) (domain.Record, error) {
		if !found {
			record = domain.NewRecord(id, now)
		}
		record.Merge(sections, currentSection, now)
		return record, nil
	})
	if err != nil {
		return domain.Record{}, err
	}
	s.logger.Debug("response upserted", "id", id, "sections", len(sections), "completion_percentage", record.UserInfo.CompletionPercentage)
	return record, nil
}

func (s *ResponseService) MarkCompleted(ctx context.Context, id string) (domain.Record, error) {
	if id == "" {
		return domain.Record{}, fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	now := s.clock.Now()
	changed := false
	record, err := s.store.Mutate(ctx, id, func(record domain.Record, found bool) (domain.Record, error) {
		if !found {
			return domain.Record{}, fmt.Errorf("%w: response %s", apperrors.ErrNotFound, id)
		}
		changed = record.MarkCompleted(now)
		return record, nil
	})
	if err != nil {
		return domain.Record{}, err
	}
	if changed {
		s.logger.Info("response completed", "id", id)
	}
	return record, nil
}

func (s *ResponseService) Get(ctx context.Context, id string) (domain.Record, error) {
	return s.store.Get(ctx, id)
}

// Detail loads the full record, falling back to summary when the record has
// been removed since the caller listed it. Other errors are returned.
func (s *ResponseService) Detail(ctx context.Context, id string, summary *domain.Record) (domain.Record, bool, error) {
	record, err := s.store.Get(ctx, id)
	if err == nil {
		return record, false, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) && summary != nil {
		s.logger.Warn("response missing, showing summary", "id", id)
		return *summary, true, nil
	}
	return domain.Record{}, false, err
}

func (s *ResponseService) List(ctx context.Context) ([]domain.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortByLastUpdated(records)
	return records, nil
}

func (s *ResponseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("response deleted", "id", id)
	return nil
}

// ExportCSV writes a fresh listing as CSV and reports the row and column
// counts.
func (s *ResponseService) ExportCSV(ctx context.Context, w io.Writer) (int, int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	columns, err := domain.WriteCSV(w, records)
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("responses exported", "records", len(records), "columns", columns)
	return len(records), columns, nil
}

func (s *ResponseService) Stats(ctx context.Context) (domain.Stats, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(records), nil
}
