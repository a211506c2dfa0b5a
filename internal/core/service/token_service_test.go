package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, ttl)
	require.NoError(t, err)
	return s
}

func TestNewTokenService_RejectsBadSecrets(t *testing.T) {
	cases := map[string]string{
		"not hex":   "zz-not-hex",
		"too short": strings.Repeat("ab", MinSecretBytes-1),
		"empty":     "",
	}
	for name, secret := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTokenService(secret, time.Hour)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	_, err := NewTokenService(testSecret, -time.Second)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokenService(t, time.Hour)

	token, err := s.Issue("user@test.com")
	require.NoError(t, err)

	subject, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", subject)
	assert.True(t, s.VerifyMatchesPrincipal(token, "user@test.com"))
	assert.False(t, s.VerifyMatchesPrincipal(token, "other@test.com"))
}

func TestTokenService_UsesHS512WithExpiry(t *testing.T) {
	s := newTestTokenService(t, 90*time.Minute)
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issuedAt }

	token, err := s.Issue("user@test.com")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "HS512", parsed.Method.Alg())
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(90*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenService_ZeroTTLIsExpired(t *testing.T) {
	s := newTestTokenService(t, 0)

	token, err := s.Issue("user@test.com")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Second) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.False(t, s.VerifyMatchesPrincipal(token, "user@test.com"))
}

func TestTokenService_ExpiredAfterTTL(t *testing.T) {
	s := newTestTokenService(t, time.Minute)
	start := time.Now()
	s.now = func() time.Time { return start }

	token, err := s.Issue("user@test.com")
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenService_TamperedSignature(t *testing.T) {
	s := newTestTokenService(t, time.Hour)
	token, err := s.Issue("user@test.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = s.Verify(tampered)
	assert.ErrorIs(t, err, domain.ErrTokenSignatureInvalid)
	assert.False(t, s.VerifyMatchesPrincipal(tampered, "user@test.com"))
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer := newTestTokenService(t, time.Hour)
	other, err := NewTokenService(strings.Repeat("cd", 32), time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("user@test.com")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenSignatureInvalid)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	s := newTestTokenService(t, time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "user@test.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.Error(t, err)
	assert.False(t, s.VerifyMatchesPrincipal(token, "user@test.com"))
}

func TestTokenService_Malformed(t *testing.T) {
	s := newTestTokenService(t, time.Hour)

	for _, token := range []string{"", "abc", "a.b.c", "not-a-jwt-at-all"} {
		_, err := s.Verify(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid, "token %q", token)
		assert.False(t, s.VerifyMatchesPrincipal(token, "user@test.com"))
	}
}

func TestTokenService_MissingSubject(t *testing.T) {
	s := newTestTokenService(t, time.Hour)
	token, err := s.Issue("")
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
