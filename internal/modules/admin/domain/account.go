package domain

import (
	"errors"
	"strings"
	"time"
)

// Login failures carry the message shown to the admin verbatim.
var (
	ErrNoAccount         = errors.New("No admin account exists for this email.")
	ErrBadCredentials    = errors.New("Incorrect email or password.")
	ErrNotAllowed        = errors.New("This account is not allowed to view responses.")
	ErrTooManyAttempts   = errors.New("Too many failed attempts. Try again later.")
	ErrMissingCredential = errors.New("Email and password are required.")
)

type Account struct {
	Email        string
	PasswordHash string
}

type Session struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AllowList is the set of emails permitted to read responses.
type AllowList map[string]struct{}

func NewAllowList(emails []string) AllowList {
	out := make(AllowList, len(emails))
	for _, email := range emails {
		if normalized := NormalizeEmail(email); normalized != "" {
			out[normalized] = struct{}{}
		}
	}
	return out
}

func (a AllowList) Contains(email string) bool {
	_, ok := a[NormalizeEmail(email)]
	return ok
}
