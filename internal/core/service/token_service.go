package service

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

// MinSecretBytes is the shortest accepted HS512 signing key.
const MinSecretBytes = 32

// TokenService issues HS512 JWTs whose subject is the user's email.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenService = (*TokenService)(nil)

// NewTokenService decodes the hex signing secret. A malformed or short secret
// and a negative TTL are configuration errors.
func NewTokenService(secretHex string, ttl time.Duration) (*TokenService, error) {
	secret, err := hex.DecodeString(strings.TrimSpace(secretHex))
	if err != nil {
		return nil, fmt.Errorf("%w: jwt secret is not valid hex: %v", domain.ErrConfiguration, err)
	}
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("%w: jwt secret must be at least %d bytes, got %d",
			domain.ErrConfiguration, MinSecretBytes, len(secret))
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%w: token ttl must not be negative", domain.ErrConfiguration)
	}
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime given to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the token subject.
func (s *TokenService) Verify(token string) (string, error) {
	claims, err := s.parse(token)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", domain.ErrTokenExpired
	default:
		return "", domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}

// VerifyMatchesPrincipal reports whether the token names expectedSubject and
// has not expired.
func (s *TokenService) VerifyMatchesPrincipal(token, expectedSubject string) bool {
	claims, err := s.parse(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.Subject == expectedSubject && s.now().Before(claims.ExpiresAt.Time)
}

func (s *TokenService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
