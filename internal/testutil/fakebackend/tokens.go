package fakebackend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const bearerPrefix = "Bearer "

var (
	errMissingAuthHeader = errors.New("missing authorization header")
	errInvalidAuthFormat = errors.New("invalid authorization header format")
	errRevoked           = errors.New("token revoked")
)

type claims struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_admin"`
	jwt.RegisteredClaims
}

func (b *Backend) issueToken(u *User) (string, error) {
	now := time.Now()
	c := claims{
		UserID:  u.ID,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(b.secret)
}

func (b *Backend) parseToken(header string) (*User, string, error) {
	if header == "" {
		return nil, "", errMissingAuthHeader
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, "", errInvalidAuthFormat
	}
	raw := strings.TrimPrefix(header, bearerPrefix)

	token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse token: %w", err)
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, "", errors.New("invalid token")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked[raw] {
		return nil, "", errRevoked
	}
	u, ok := b.users[c.UserID]
	if !ok {
		return nil, "", errors.New("user not found")
	}
	return u, raw, nil
}
