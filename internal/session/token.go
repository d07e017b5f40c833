// Package session issues and verifies the stateless admin session tokens
// and handles the admin login exchange.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the session token claims: the authenticated principal plus
// the registered expiry.
type Claims struct {
	Principal string `json:"principal"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens (HS256). Tokens are
// self-contained; no server-side session state exists.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service. expireHours <= 0 falls back to
// the 8-hour default.
func NewTokenService(secret string, expireHours int) *TokenService {
	if expireHours <= 0 {
		expireHours = 8
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    time.Duration(expireHours) * time.Hour,
		now:    time.Now,
	}
}

// Issue creates a signed token for the principal, expiring after the
// configured TTL.
func (s *TokenService) Issue(principal string) (string, error) {
	now := s.now()
	claims := Claims{
		Principal: principal,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify recomputes the signature and checks expiry. It returns the
// principal and true on success, or ("", false) for any malformed, tampered
// or expired token; callers treat false as unauthenticated.
func (s *TokenService) Verify(tokenString string) (string, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return "", false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Principal == "" {
		return "", false
	}
	return claims.Principal, true
}
