package out

import (
	"context"

	responsesdto "kreosurvey/internal/modules/responses/dto"
	responsesin "kreosurvey/internal/modules/responses/port/in"
	surveyout "kreosurvey/internal/modules/survey/port/out"
)

// ResponsesBridge writes drafts straight into the local responses module
// when no remote server is configured.
type ResponsesBridge struct {
	responses responsesin.Usecase
}

func NewResponsesBridge(responses responsesin.Usecase) surveyout.ResponseStore {
	return &ResponsesBridge{responses: responses}
}

func (b *ResponsesBridge) Upsert(ctx context.Context, draft surveyout.Draft) error {
	_, err := b.responses.Upsert(ctx, responsesdto.UpsertInput{
		ID:             draft.SessionID,
		Sections:       draft.Sections.Plain(),
		CurrentSection: string(draft.CurrentSection),
	})
	return err
}

func (b *ResponsesBridge) MarkCompleted(ctx context.Context, sessionID string) error {
	_, err := b.responses.MarkCompleted(ctx, sessionID)
	return err
}

func (b *ResponsesBridge) Fetch(ctx context.Context, sessionID string) (surveyout.RemoteRecord, error) {
	record, err := b.responses.Get(ctx, sessionID)
	if err != nil {
		return surveyout.RemoteRecord{}, err
	}
	return surveyout.RemoteRecord{
		SessionID:            record.ID,
		CompletionStatus:     record.UserInfo.CompletionStatus,
		CompletionPercentage: record.UserInfo.CompletionPercentage,
		CurrentSection:       record.UserInfo.CurrentSection,
		LastUpdated:          record.UserInfo.LastUpdated,
	}, nil
}
