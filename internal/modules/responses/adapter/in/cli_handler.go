package in

import (
	"context"
	"fmt"
	"io"
	"os"

	"kreosurvey/internal/modules/responses/dto"
	responsesin "kreosurvey/internal/modules/responses/port/in"
)

type CLIHandler struct {
	usecase responsesin.Usecase
}

func NewCLIHandler(usecase responsesin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.RecordOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Show(ctx context.Context, id string) (dto.RecordOutput, error) {
	return h.usecase.Get(ctx, id)
}

// Detail falls back to summary when the record is gone.
func (h CLIHandler) Detail(ctx context.Context, id string, summary *dto.RecordOutput) (dto.DetailOutput, error) {
	return h.usecase.Detail(ctx, dto.DetailInput{ID: id, Summary: summary})
}

func (h CLIHandler) Delete(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) Export(ctx context.Context, w io.Writer) (dto.ExportOutput, error) {
	return h.usecase.ExportCSV(ctx, w)
}

// ExportFile writes the CSV to path, replacing it only when the export
// succeeds.
func (h CLIHandler) ExportFile(ctx context.Context, path string) (dto.ExportOutput, error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return dto.ExportOutput{}, fmt.Errorf("create export file: %w", err)
	}
	out, err := h.usecase.ExportCSV(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close export file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return dto.ExportOutput{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return dto.ExportOutput{}, fmt.Errorf("write export file: %w", err)
	}
	return out, nil
}
