package out

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	surveyout "kreosurvey/internal/modules/survey/port/out"
	apperrors "kreosurvey/internal/platform/errors"
	"kreosurvey/internal/platform/storerpc"
)

const defaultCallTimeout = 5 * time.Second

// GRPCResponseStore pushes drafts to a remote kreosurvey serve instance.
type GRPCResponseStore struct {
	client  storerpc.ResponseStoreClient
	timeout time.Duration
}

func NewGRPCResponseStore(conn grpc.ClientConnInterface) surveyout.ResponseStore {
	return &GRPCResponseStore{client: storerpc.NewResponseStoreClient(conn), timeout: defaultCallTimeout}
}

func (s *GRPCResponseStore) Upsert(ctx context.Context, draft surveyout.Draft) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	_, err := s.client.Upsert(callCtx, &storerpc.UpsertRequest{
		ID:             draft.SessionID,
		Sections:       draft.Sections.Plain(),
		CurrentSection: string(draft.CurrentSection),
	})
	if err != nil {
		return fmt.Errorf("upsert response: %w", mapRPCError(err))
	}
	return nil
}

func (s *GRPCResponseStore) MarkCompleted(ctx context.Context, sessionID string) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	if _, err := s.client.MarkCompleted(callCtx, &storerpc.IDRequest{ID: sessionID}); err != nil {
		return fmt.Errorf("mark completed: %w", mapRPCError(err))
	}
	return nil
}

func (s *GRPCResponseStore) Fetch(ctx context.Context, sessionID string) (surveyout.RemoteRecord, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	doc, err := s.client.Get(callCtx, &storerpc.IDRequest{ID: sessionID})
	if err != nil {
		return surveyout.RemoteRecord{}, fmt.Errorf("fetch response: %w", mapRPCError(err))
	}
	lastUpdated, _ := time.Parse(time.RFC3339Nano, doc.UserInfo.LastUpdated)
	return surveyout.RemoteRecord{
		SessionID:            doc.ID,
		CompletionStatus:     doc.UserInfo.CompletionStatus,
		CompletionPercentage: int(doc.UserInfo.CompletionPercentage),
		CurrentSection:       doc.UserInfo.CurrentSection,
		LastUpdated:          lastUpdated,
	}, nil
}

func (s *GRPCResponseStore) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.timeout)
}

func mapRPCError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, status.Convert(err).Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, status.Convert(err).Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.Join(apperrors.ErrUnavailable, err)
	}
	return err
}
