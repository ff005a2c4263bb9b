package in

import (
	"context"

	surveydto "kreosurvey/internal/modules/survey/dto"
	surveyin "kreosurvey/internal/modules/survey/port/in"
)

type TUIHandler struct {
	usecase surveyin.Usecase
}

func NewTUIHandler(usecase surveyin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Start(ctx context.Context) (surveydto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

func (h TUIHandler) Resume(ctx context.Context) (surveydto.ScreenOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h TUIHandler) StartOver(ctx context.Context) (surveydto.ScreenOutput, error) {
	return h.usecase.StartOver(ctx)
}

func (h TUIHandler) Submit(ctx context.Context, screen string, answers map[string]any) (surveydto.ScreenOutput, error) {
	return h.usecase.Submit(ctx, surveydto.SubmitInput{Screen: screen, Answers: answers})
}

func (h TUIHandler) Back(ctx context.Context) (surveydto.ScreenOutput, error) {
	return h.usecase.Back(ctx)
}

func (h TUIHandler) JumpTo(ctx context.Context, section string) (surveydto.ScreenOutput, error) {
	return h.usecase.JumpTo(ctx, section)
}

func (h TUIHandler) SaveStatus(ctx context.Context) surveydto.SaveStatusOutput {
	return h.usecase.SaveStatus(ctx)
}

func (h TUIHandler) Leave(ctx context.Context) error {
	return h.usecase.Leave(ctx)
}
