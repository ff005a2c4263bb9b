package in

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kreosurvey/internal/modules/responses/dto"
	responsesin "kreosurvey/internal/modules/responses/port/in"
	apperrors "kreosurvey/internal/platform/errors"
	"kreosurvey/internal/platform/storerpc"
)

// GRPCServer exposes the responses usecase to remote survey clients.
type GRPCServer struct {
	usecase responsesin.Usecase
	logger  *slog.Logger
}

func NewGRPCServer(usecase responsesin.Usecase, logger *slog.Logger) *GRPCServer {
	return &GRPCServer{usecase: usecase, logger: logger}
}

var _ storerpc.ResponseStoreServer = (*GRPCServer)(nil)

func (s *GRPCServer) Upsert(ctx context.Context, in *storerpc.UpsertRequest) (*storerpc.Document, error) {
	record, err := s.usecase.Upsert(ctx, dto.UpsertInput{ID: in.ID, Sections: in.Sections, CurrentSection: in.CurrentSection})
	if err != nil {
		return nil, s.statusError("upsert", in.ID, err)
	}
	return toDocument(record), nil
}

func (s *GRPCServer) MarkCompleted(ctx context.Context, in *storerpc.IDRequest) (*storerpc.Document, error) {
	record, err := s.usecase.MarkCompleted(ctx, in.ID)
	if err != nil {
		return nil, s.statusError("mark completed", in.ID, err)
	}
	return toDocument(record), nil
}

func (s *GRPCServer) Get(ctx context.Context, in *storerpc.IDRequest) (*storerpc.Document, error) {
	record, err := s.usecase.Get(ctx, in.ID)
	if err != nil {
		return nil, s.statusError("get", in.ID, err)
	}
	return toDocument(record), nil
}

func (s *GRPCServer) List(ctx context.Context, _ *storerpc.Empty) (*storerpc.ListResponse, error) {
	records, err := s.usecase.List(ctx)
	if err != nil {
		return nil, s.statusError("list", "", err)
	}
	out := &storerpc.ListResponse{Documents: make([]storerpc.Document, 0, len(records))}
	for _, record := range records {
		out.Documents = append(out.Documents, *toDocument(record))
	}
	return out, nil
}

func (s *GRPCServer) Delete(ctx context.Context, in *storerpc.IDRequest) (*storerpc.Empty, error) {
	if err := s.usecase.Delete(ctx, in.ID); err != nil {
		return nil, s.statusError("delete", in.ID, err)
	}
	return &storerpc.Empty{}, nil
}

func (s *GRPCServer) statusError(op, id string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error("response store rpc failed", "op", op, "id", id, "error", err)
	return status.Error(codes.Internal, err.Error())
}

func toDocument(record dto.RecordOutput) *storerpc.Document {
	info := record.UserInfo
	doc := &storerpc.Document{
		ID: record.ID,
		UserInfo: storerpc.UserInfo{
			SessionID:            info.SessionID,
			StartTime:            info.StartTime.UTC().Format(time.RFC3339Nano),
			LastUpdated:          info.LastUpdated.UTC().Format(time.RFC3339Nano),
			CompletionStatus:     info.CompletionStatus,
			CompletionPercentage: int32(info.CompletionPercentage),
			CurrentSection:       info.CurrentSection,
		},
		Sections: record.Sections,
	}
	if info.CompletionTime != nil {
		doc.UserInfo.CompletionTime = info.CompletionTime.UTC().Format(time.RFC3339Nano)
	}
	return doc
}
