package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kreosurvey/internal/modules/admin/domain"
	adminout "kreosurvey/internal/modules/admin/port/out"
	"kreosurvey/internal/platform/clock"
	apperrors "kreosurvey/internal/platform/errors"
)

const DefaultTokenTTL = 12 * time.Hour

type AuthService struct {
	clock    clock.Clock
	accounts adminout.AccountDirectory
	hasher   adminout.PasswordHasher
	tokens   adminout.TokenIssuer
	allow    domain.AllowList
	limiter  *domain.AttemptLimiter
	ttl      time.Duration
	logger   *slog.Logger
}

func NewAuthService(clock clock.Clock, accounts adminout.AccountDirectory, hasher adminout.PasswordHasher, tokens adminout.TokenIssuer, allow domain.AllowList, limiter *domain.AttemptLimiter, ttl time.Duration, logger *slog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{clock: clock, accounts: accounts, hasher: hasher, tokens: tokens, allow: allow, limiter: limiter, ttl: ttl, logger: logger}
}

// Login checks the credentials, then the allow-list, and issues a session
// token. Unknown accounts and wrong passwords both count towards the lock.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Session{}, domain.ErrMissingCredential
	}
	now := s.clock.Now()
	if s.limiter.Locked(email, now) {
		s.logger.Warn("admin login locked", "email", email)
		return domain.Session{}, domain.ErrTooManyAttempts
	}
	account, ok, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		return domain.Session{}, fmt.Errorf("lookup admin account: %w", err)
	}
	if !ok {
		s.limiter.RecordFailure(email, now)
		s.logger.Info("admin login for unknown account", "email", email)
		return domain.Session{}, domain.ErrNoAccount
	}
	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		s.limiter.RecordFailure(email, now)
		s.logger.Info("admin login rejected", "email", email)
		return domain.Session{}, domain.ErrBadCredentials
	}
	s.limiter.Reset(email)
	if !s.allow.Contains(email) {
		s.logger.Warn("admin login not allow-listed", "email", email)
		return domain.Session{}, domain.ErrNotAllowed
	}
	token, expiresAt, err := s.tokens.Issue(email, now, s.ttl)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue session token: %w", err)
	}
	s.logger.Info("admin signed in", "email", email)
	return domain.Session{Email: email, Token: token, ExpiresAt: expiresAt}, nil
}

// Authorize validates a session token and re-checks the allow-list.
func (s *AuthService) Authorize(_ context.Context, token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, fmt.Errorf("%w: missing session token", apperrors.ErrUnauthenticated)
	}
	email, expiresAt, err := s.tokens.Parse(token, s.clock.Now())
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}
	if !s.allow.Contains(email) {
		return domain.Session{}, domain.ErrNotAllowed
	}
	return domain.Session{Email: email, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", apperrors.ErrInvalidInput)
	}
	if len(password) > 72 {
		return "", fmt.Errorf("%w: password longer than 72 bytes", apperrors.ErrInvalidInput)
	}
	return s.hasher.Hash(password)
}
