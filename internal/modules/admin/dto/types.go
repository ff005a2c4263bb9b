package dto

import "time"

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionOutput struct {
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
