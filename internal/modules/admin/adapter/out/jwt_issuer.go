package out

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	adminout "kreosurvey/internal/modules/admin/port/out"
)

const tokenIssuer = "kreosurvey"

type JWTIssuer struct {
	secret []byte
}

func NewJWTIssuer(secret string) (adminout.TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTIssuer{secret: []byte(secret)}, nil
}

func (j *JWTIssuer) Issue(email string, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (j *JWTIssuer) Parse(token string, now time.Time) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", time.Time{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", time.Time{}, errors.New("invalid token")
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}
