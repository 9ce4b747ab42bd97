package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medvault/internal/config"
	"medvault/internal/model"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the JWT claims carried by a session token. The role is
// embedded so the gate can enforce role sets without a user lookup per request.
type SessionClaims struct {
	UserID string     `json:"uid"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSessions builds a session token manager from auth configuration.
func NewSessions(cfg config.AuthConfig) (*Sessions, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Sessions{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    time.Duration(cfg.SessionTTLMin) * time.Minute,
	}, nil
}

// Issue mints a signed session token for the given user identity.
func (s *Sessions) Issue(userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a session token and returns its claims. Any parse, signature,
// expiry, or issuer failure is reported as ErrInvalidToken.
func (s *Sessions) Verify(tokenStr string) (*SessionClaims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := t.Claims.(*SessionClaims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := model.ParseRole(string(claims.Role)); err != nil || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL exposes the configured session lifetime for cookie expiry.
func (s *Sessions) TTL() time.Duration { return s.ttl }
