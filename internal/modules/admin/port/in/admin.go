package in

import (
	"context"

	"kreosurvey/internal/modules/admin/dto"
)

type Usecase interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Authorize(ctx context.Context, token string) (dto.SessionOutput, error)
	HashPassword(ctx context.Context, password string) (string, error)
}
