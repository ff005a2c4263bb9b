package out

import (
	"context"
	"time"

	"kreosurvey/internal/modules/admin/domain"
)

type AccountDirectory interface {
	Lookup(ctx context.Context, email string) (domain.Account, bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(email string, issuedAt time.Time, ttl time.Duration) (string, time.Time, error)
	Parse(token string, now time.Time) (email string, expiresAt time.Time, err error)
}
