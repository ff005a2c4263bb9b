package usecase

import (
	"context"
	"io"

	"kreosurvey/internal/modules/responses/domain"
	"kreosurvey/internal/modules/responses/dto"
	responsesin "kreosurvey/internal/modules/responses/port/in"
	"kreosurvey/internal/modules/responses/service"
)

type Interactor struct {
	svc *service.ResponseService
}

func NewInteractor(svc *service.ResponseService) responsesin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Upsert(ctx context.Context, input dto.UpsertInput) (dto.RecordOutput, error) {
	record, err := i.svc.Upsert(ctx, input.ID, input.Sections, input.CurrentSection)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) MarkCompleted(ctx context.Context, id string) (dto.RecordOutput, error) {
	record, err := i.svc.MarkCompleted(ctx, id)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.RecordOutput, error) {
	record, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) Detail(ctx context.Context, input dto.DetailInput) (dto.DetailOutput, error) {
	var summary *domain.Record
	if input.Summary != nil {
		record := fromOutput(*input.Summary)
		summary = &record
	}
	record, fromSummary, err := i.svc.Detail(ctx, input.ID, summary)
	if err != nil {
		return dto.DetailOutput{}, err
	}
	return dto.DetailOutput{Record: toOutput(record), FromSummary: fromSummary}, nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.RecordOutput, error) {
	records, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toOutput(record))
	}
	return out, nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	return i.svc.Delete(ctx, id)
}

func (i *Interactor) ExportCSV(ctx context.Context, w io.Writer) (dto.ExportOutput, error) {
	records, columns, err := i.svc.ExportCSV(ctx, w)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Records: records, Columns: columns}, nil
}

func (i *Interactor) Stats(ctx context.Context) (dto.StatsOutput, error) {
	stats, err := i.svc.Stats(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	return dto.StatsOutput{
		Total:             stats.Total,
		Completed:         stats.Completed,
		InProgress:        stats.InProgress,
		AveragePercentage: stats.AveragePercentage,
		SectionCounts:     stats.SectionCounts,
	}, nil
}

func toOutput(record domain.Record) dto.RecordOutput {
	info := record.UserInfo
	return dto.RecordOutput{
		ID: record.ID,
		UserInfo: dto.UserInfoOutput{
			SessionID:            info.SessionID,
			StartTime:            info.StartTime,
			LastUpdated:          info.LastUpdated,
			CompletionStatus:     string(info.CompletionStatus),
			CompletionPercentage: info.CompletionPercentage,
			CurrentSection:       info.CurrentSection,
			CompletionTime:       info.CompletionTime,
		},
		Sections: record.Sections,
	}
}

func fromOutput(out dto.RecordOutput) domain.Record {
	info := out.UserInfo
	return domain.Record{
		ID: out.ID,
		UserInfo: domain.UserInfo{
			SessionID:            info.SessionID,
			StartTime:            info.StartTime,
			LastUpdated:          info.LastUpdated,
			CompletionStatus:     domain.Status(info.CompletionStatus),
			CompletionPercentage: info.CompletionPercentage,
			CurrentSection:       info.CurrentSection,
			CompletionTime:       info.CompletionTime,
		},
		Sections: out.Sections,
	}
}
