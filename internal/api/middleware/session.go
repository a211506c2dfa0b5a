package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

const (
	// SessionName is the admin session cookie.
	SessionName = "SBSESSION"

	LoginPath     = "/admin/login"
	LogoutPath    = "/admin/logout"
	DashboardPath = "/admin/dashboard"

	keyPrincipalID = "principal_id"
	keySessionID   = "sid"
	keySavedTarget = "saved_target"
	keyLoginError  = "auth_error"

	sessionExpiredKey = "session_expired"
)

// NewCookieStore builds the signed cookie store backing admin sessions.
func NewCookieStore(key []byte, secure bool, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/admin",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Sessions establishes, restores and invalidates admin sessions. One session
// per account is live at a time: the registry remembers the newest, and any
// older session is dropped on its next request.
type Sessions struct {
	users    ports.AuthRepository
	registry ports.SessionRegistry
	remember *RememberMe
	maxAge   time.Duration
	log      zerolog.Logger
}

// NewSessions wires the session flow. remember may be nil.
func NewSessions(users ports.AuthRepository, registry ports.SessionRegistry, remember *RememberMe, maxAge time.Duration, log zerolog.Logger) *Sessions {
	return &Sessions{users: users, registry: registry, remember: remember, maxAge: maxAge, log: log}
}

// Store returns the request's admin session. A cookie that fails to decode
// yields a fresh session.
func (s *Sessions) Store(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("discarding undecodable session cookie")
	}
	return sess, nil
}

// Middleware restores the principal from the session, falling back to the
// remember-me cookie. It never rejects a request.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := s.Store(c)
			if err != nil {
				return err
			}

			if user := s.restore(c, sess); user != nil {
				SetPrincipal(c, domain.NewPrincipal(user))
				return next(c)
			}

			if s.remember != nil {
				if user := s.remember.AutoLogin(c); user != nil {
					if err := s.Establish(c, user); err != nil {
						s.log.Error().Err(err).Str("user_id", user.ID).Msg("remember-me session setup failed")
						return next(c)
					}
					SetPrincipal(c, domain.NewPrincipal(user))
				}
			}
			return next(c)
		}
	}
}

func (s *Sessions) restore(c echo.Context, sess *sessions.Session) *domain.User {
	uid, _ := sess.Values[keyPrincipalID].(string)
	sid, _ := sess.Values[keySessionID].(string)
	if uid == "" {
		return nil
	}
	ctx := c.Request().Context()

	current, err := s.registry.IsCurrent(ctx, uid, sid)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", uid).Msg("session registry lookup failed")
		return nil
	}
	if !current {
		s.log.Info().Str("user_id", uid).Msg("session displaced by a newer login")
		c.Set(sessionExpiredKey, true)
		s.clear(c, sess)
		return nil
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil || !user.Active {
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", uid).Msg("session principal lookup failed")
			return nil
		}
		s.log.Info().Str("user_id", uid).Msg("session principal no longer active")
		_ = s.registry.Revoke(ctx, uid, sid)
		s.clear(c, sess)
		return nil
	}

	// Activity keeps the session alive: refresh both the registry entry and
	// the cookie's Max-Age.
	if err := s.registry.Touch(ctx, uid, sid, s.maxAge); err != nil {
		s.log.Error().Err(err).Str("user_id", uid).Msg("session touch failed")
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		s.log.Error().Err(err).Str("user_id", uid).Msg("session refresh failed")
	}
	return user
}

// Establish starts a new session for user, displacing any other session of
// the same account.
func (s *Sessions) Establish(c echo.Context, user *domain.User) error {
	sess, err := s.Store(c)
	if err != nil {
		return err
	}
	sid := uuid.NewString()

	if err := s.registry.Register(c.Request().Context(), user.ID, sid, s.maxAge); err != nil {
		return err
	}
	sess.Values[keyPrincipalID] = user.ID
	sess.Values[keySessionID] = sid
	return sess.Save(c.Request(), c.Response())
}

// Invalidate ends the current session and its registry entry.
func (s *Sessions) Invalidate(c echo.Context) error {
	sess, err := s.Store(c)
	if err != nil {
		return err
	}
	uid, _ := sess.Values[keyPrincipalID].(string)
	sid, _ := sess.Values[keySessionID].(string)
	if uid != "" {
		if err := s.registry.Revoke(c.Request().Context(), uid, sid); err != nil {
			s.log.Error().Err(err).Str("user_id", uid).Msg("session revoke failed")
		}
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// SaveTarget remembers the protected page that sent the user to login.
func (s *Sessions) SaveTarget(c echo.Context, target string) {
	sess, err := s.Store(c)
	if err != nil {
		return
	}
	sess.Values[keySavedTarget] = target
	_ = sess.Save(c.Request(), c.Response())
}

// TakeTarget returns and forgets the saved target, or the dashboard when no
// safe target was saved.
func (s *Sessions) TakeTarget(c echo.Context) string {
	sess, err := s.Store(c)
	if err != nil {
		return DashboardPath
	}
	target, _ := sess.Values[keySavedTarget].(string)
	delete(sess.Values, keySavedTarget)
	_ = sess.Save(c.Request(), c.Response())

	if !safeAdminTarget(target) {
		return DashboardPath
	}
	return target
}

// SetLoginError records msg for the next render of the login page,
// replacing any message not yet shown.
func (s *Sessions) SetLoginError(c echo.Context, msg string) {
	sess, err := s.Store(c)
	if err != nil {
		return
	}
	sess.Values[keyLoginError] = msg
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		s.log.Error().Err(err).Msg("saving login error failed")
	}
}

// TakeLoginError returns and forgets the pending login error message.
func (s *Sessions) TakeLoginError(c echo.Context) string {
	sess, err := s.Store(c)
	if err != nil {
		return ""
	}
	msg, ok := sess.Values[keyLoginError].(string)
	if !ok {
		return ""
	}
	delete(sess.Values, keyLoginError)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		s.log.Error().Err(err).Msg("clearing login error failed")
	}
	return msg
}

func (s *Sessions) clear(c echo.Context, sess *sessions.Session) {
	delete(sess.Values, keyPrincipalID)
	delete(sess.Values, keySessionID)
	_ = sess.Save(c.Request(), c.Response())
}

func safeAdminTarget(target string) bool {
	if target == "" || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return false
	}
	return target == "/admin" || strings.HasPrefix(target, "/admin/")
}

// adminPublic lists the admin paths reachable without a session.
var adminPublic = Paths(
	LoginPath,
	LogoutPath,
	"/admin/css/**",
	"/admin/js/**",
	"/admin/images/**",
	"/admin/plugins/**",
)

// RequireAdmin guards the admin site. Anonymous requests are redirected to
// the login page (remembering GET targets); principals without the ADMIN
// role get forbidden.
func RequireAdmin(s *Sessions, forbidden echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminPublic(c.Request()) {
				return next(c)
			}

			p := PrincipalFrom(c)
			if p == nil {
				if expired, _ := c.Get(sessionExpiredKey).(bool); expired {
					return c.Redirect(http.StatusFound, LoginPath+"?expired")
				}
				if c.Request().Method == http.MethodGet {
					s.SaveTarget(c, c.Request().URL.RequestURI())
				}
				return c.Redirect(http.StatusFound, LoginPath)
			}
			if !p.HasRole(domain.RoleAdmin) {
				return forbidden(c)
			}
			return next(c)
		}
	}
}
