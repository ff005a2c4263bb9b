package in

import (
	"context"

	"kreosurvey/internal/modules/survey/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	Resume(ctx context.Context) (dto.ScreenOutput, error)
	StartOver(ctx context.Context) (dto.ScreenOutput, error)
	Screen(ctx context.Context) (dto.ScreenOutput, error)
	Submit(ctx context.Context, input dto.SubmitInput) (dto.ScreenOutput, error)
	Back(ctx context.Context) (dto.ScreenOutput, error)
	JumpTo(ctx context.Context, section string) (dto.ScreenOutput, error)
	SaveStatus(ctx context.Context) dto.SaveStatusOutput
	Status(ctx context.Context) (dto.StatusOutput, error)
	Leave(ctx context.Context) error
}
