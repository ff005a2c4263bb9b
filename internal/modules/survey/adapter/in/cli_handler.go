package in

import (
	"context"

	surveydto "kreosurvey/internal/modules/survey/dto"
	surveyin "kreosurvey/internal/modules/survey/port/in"
)

type CLIHandler struct {
	usecase surveyin.Usecase
}

func NewCLIHandler(usecase surveyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (surveydto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

// Reset discards local answers and the session id, then releases the
// synchronizer.
func (h CLIHandler) Reset(ctx context.Context) error {
	if _, err := h.usecase.StartOver(ctx); err != nil {
		return err
	}
	return h.usecase.Leave(ctx)
}
