package in

import (
	"context"
	"io"

	"kreosurvey/internal/modules/responses/dto"
)

type Usecase interface {
	Upsert(ctx context.Context, input dto.UpsertInput) (dto.RecordOutput, error)
	MarkCompleted(ctx context.Context, id string) (dto.RecordOutput, error)
	Get(ctx context.Context, id string) (dto.RecordOutput, error)
	Detail(ctx context.Context, input dto.DetailInput) (dto.DetailOutput, error)
	List(ctx context.Context) ([]dto.RecordOutput, error)
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, w io.Writer) (dto.ExportOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
}
