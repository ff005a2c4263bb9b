package in

import "kreosurvey/internal/modules/admin/domain"

// Login errors surfaced to callers of Usecase.
var (
	ErrNoAccount         = domain.ErrNoAccount
	ErrBadCredentials    = domain.ErrBadCredentials
	ErrNotAllowed        = domain.ErrNotAllowed
	ErrTooManyAttempts   = domain.ErrTooManyAttempts
	ErrMissingCredential = domain.ErrMissingCredential
)
