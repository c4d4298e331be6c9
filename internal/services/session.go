package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService issues and parses signed session tokens for
// authenticated customers and drivers.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a session issuer with the given signing
// secret and token lifetime.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// SessionClaims is the identity carried by a session token.
type SessionClaims struct {
	AccountID string `json:"sub"`
	Role      string `json:"role"`
	Mobile    string `json:"mobile"`
	jwt.RegisteredClaims
}

// Issue creates a signed session token for the account.
func (s *SessionService) Issue(accountID, role, mobile string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		AccountID: accountID,
		Role:      role,
		Mobile:    mobile,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "seatlink",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a session token and returns its claims.
func (s *SessionService) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
