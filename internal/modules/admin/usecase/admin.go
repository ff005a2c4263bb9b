package usecase

import (
	"context"

	"kreosurvey/internal/modules/admin/dto"
	adminin "kreosurvey/internal/modules/admin/port/in"
	"kreosurvey/internal/modules/admin/service"
)

type Interactor struct {
	svc *service.AuthService
}

func NewInteractor(svc *service.AuthService) adminin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error) {
	session, err := i.svc.Login(ctx, input.Email, input.Password)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return dto.SessionOutput{Email: session.Email, Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (i *Interactor) Authorize(ctx context.Context, token string) (dto.SessionOutput, error) {
	session, err := i.svc.Authorize(ctx, token)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return dto.SessionOutput{Email: session.Email, ExpiresAt: session.ExpiresAt}, nil
}

func (i *Interactor) HashPassword(_ context.Context, password string) (string, error) {
	return i.svc.HashPassword(password)
}
