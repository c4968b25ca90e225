// Package auth signs and parses the HS256 session tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the account role. Subject is the
// user id and ID (jti) is the session id.
type Claims struct {
	jwt.RegisteredClaims
	Role models.UserRole `json:"role"`
}

// GenerateToken signs a token for session s.
func GenerateToken(s models.Session, issuedAt time.Time, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		Role: s.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken checks signature, algorithm and expiry (against now) and returns
// the session the token describes. Any failure is ErrInvalidSession.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (models.Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", common.ErrInvalidSession, err)
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return models.Session{}, common.ErrInvalidSession
	}

	return models.Session{
		ID:        claims.ID,
		UserID:    claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
