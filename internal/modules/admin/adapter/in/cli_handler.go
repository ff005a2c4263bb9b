package in

import (
	"context"

	adminin "kreosurvey/internal/modules/admin/port/in"
)

type CLIHandler struct {
	usecase adminin.Usecase
}

func NewCLIHandler(usecase adminin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) HashPassword(ctx context.Context, password string) (string, error) {
	return h.usecase.HashPassword(ctx, password)
}
