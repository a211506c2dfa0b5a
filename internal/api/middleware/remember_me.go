package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

const (
	// RememberMeCookie carries "<series>:<token>".
	RememberMeCookie = "remember-me"
	// RememberMeTTL is the lifetime of a persistent login.
	RememberMeTTL = 14 * 24 * time.Hour
)

// RememberMe issues and consumes persistent login cookies. Each series keeps
// one token; the token rotates on every use and only its hash is stored. A
// known series presented with the wrong token is treated as stolen and
// deleted.
type RememberMe struct {
	store  ports.RememberMeStore
	users  ports.AuthRepository
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

func NewRememberMe(store ports.RememberMeStore, users ports.AuthRepository, secure bool, log zerolog.Logger) *RememberMe {
	return &RememberMe{store: store, users: users, secure: secure, log: log, now: time.Now}
}

// Issue starts a new series for userID and sets the cookie.
func (r *RememberMe) Issue(c echo.Context, userID string) error {
	return r.write(c, uuid.NewString(), userID)
}

// AutoLogin resolves the cookie to an active user, rotating its token. It
// returns nil when there is no usable cookie.
func (r *RememberMe) AutoLogin(c echo.Context) *domain.User {
	series, token, ok := r.read(c)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()

	stored, err := r.store.Find(ctx, series)
	if err != nil {
		if !errors.Is(err, domain.ErrRememberMeNotFound) {
			r.log.Error().Err(err).Msg("remember-me lookup failed")
		}
		r.clearCookie(c)
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(stored.TokenHash)) != 1 {
		r.log.Warn().Str("user_id", stored.UserID).Str("ip", ClientIP(c)).Msg("remember-me token mismatch, series revoked")
		_ = r.store.Delete(ctx, series)
		r.clearCookie(c)
		return nil
	}

	user, err := r.users.FindByID(ctx, stored.UserID)
	if err != nil || !user.Active {
		_ = r.store.Delete(ctx, series)
		r.clearCookie(c)
		return nil
	}

	if err := r.write(c, series, user.ID); err != nil {
		r.log.Error().Err(err).Str("user_id", user.ID).Msg("remember-me rotation failed")
		return nil
	}
	return user
}

// Forget deletes the cookie's series and clears the cookie.
func (r *RememberMe) Forget(c echo.Context) {
	if series, _, ok := r.read(c); ok {
		if err := r.store.Delete(c.Request().Context(), series); err != nil {
			r.log.Error().Err(err).Msg("remember-me delete failed")
		}
	}
	r.clearCookie(c)
}

func (r *RememberMe) write(c echo.Context, series, userID string) error {
	token, err := newToken()
	if err != nil {
		return err
	}
	err = r.store.Save(c.Request().Context(), ports.RememberMeToken{
		Series:    series,
		UserID:    userID,
		TokenHash: hashToken(token),
		LastUsed:  r.now().UTC(),
	}, RememberMeTTL)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     RememberMeCookie,
		Value:    series + ":" + token,
		Path:     "/admin",
		MaxAge:   int(RememberMeTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (r *RememberMe) read(c echo.Context) (series, token string, ok bool) {
	cookie, err := c.Cookie(RememberMeCookie)
	if err != nil {
		return "", "", false
	}
	series, token, ok = strings.Cut(cookie.Value, ":")
	if !ok || series == "" || token == "" {
		return "", "", false
	}
	return series, token, true
}

func (r *RememberMe) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RememberMeCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
