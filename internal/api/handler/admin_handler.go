package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/api/metrics"
	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/api/view"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
	"github.com/sunbooking/booking-system/internal/pkg/i18n"
)

// Login failure categories carried in the ?error= query parameter.
const (
	errorInvalid  = "invalid"
	errorDisabled = "disabled"
	errorBlocked  = "blocked"
	errorGeneral  = "general"
)

// AdminHandler serves the session-based admin login and the pages behind it.
type AdminHandler struct {
	auth     ports.AuthService
	attempts ports.LoginAttemptTracker
	sessions *middleware.Sessions
	remember *middleware.RememberMe
	audit    ports.LoginAuditor
	bundle   *i18n.Bundle
	log      zerolog.Logger
	now      func() time.Time
}

// NewAdminHandler wires the admin site. remember and audit may be nil.
func NewAdminHandler(
	auth ports.AuthService,
	attempts ports.LoginAttemptTracker,
	sessions *middleware.Sessions,
	remember *middleware.RememberMe,
	audit ports.LoginAuditor,
	bundle *i18n.Bundle,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		attempts: attempts,
		sessions: sessions,
		remember: remember,
		audit:    audit,
		bundle:   bundle,
		log:      log,
		now:      time.Now,
	}
}

func (h *AdminHandler) localizer(c echo.Context) i18n.Localizer {
	return h.bundle.For(c.Request().Header.Get("Accept-Language"))
}

// LoginForm renders the sign-in page. An admin who is already signed in goes
// straight to the dashboard.
func (h *AdminHandler) LoginForm(c echo.Context) error {
	if p := middleware.PrincipalFrom(c); p.HasRole(domain.RoleAdmin) {
		return c.Redirect(http.StatusFound, middleware.DashboardPath)
	}

	loc := h.localizer(c)
	query := c.QueryParams()
	m := view.LoginModel{Locale: loc.Locale(), Error: h.sessions.TakeLoginError(c)}
	if m.Error == "" && query.Get("error") != "" {
		m.Error = loc.T(i18n.LoginErrorGeneral)
	}
	switch {
	case query.Has("logout"):
		m.Notice = loc.T(i18n.LoginMessageLogout)
	case query.Has("expired"):
		m.Notice = loc.T(i18n.LoginMessageExpired)
	}
	return view.Render(c, http.StatusOK, view.LoginPage(m))
}

// Login processes the sign-in form. Every failure replaces the pending login
// error and redirects back to the form; nothing raw reaches the browser.
func (h *AdminHandler) Login(c echo.Context) error {
	loc := h.localizer(c)
	source := middleware.ClientIP(c)
	email := domain.NormalizeEmail(c.FormValue("username"))

	if h.attempts.IsBlocked(source) {
		minutes := h.attempts.RemainingLockoutMinutes(source)
		h.log.Warn().Str("ip", source).Str("email", email).Int("remaining_minutes", minutes).Msg("admin login blocked")
		h.record(email, source, domain.OutcomeBlocked, "rate_limited")
		return h.fail(c, errorBlocked, loc.T(i18n.LoginErrorBlocked, minutes))
	}

	user, err := h.auth.Authenticate(c.Request().Context(), email, c.FormValue("password"))
	if err != nil {
		category, msg := h.classifyFailure(loc, source, err)
		h.log.Warn().Err(err).Str("ip", source).Str("email", email).Str("reason", category).Msg("admin login failed")
		h.record(email, source, domain.OutcomeFailure, category)
		return h.fail(c, category, msg)
	}

	h.attempts.Reset(source)
	if err := h.sessions.Establish(c, user); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("session setup failed")
		return h.fail(c, errorGeneral, loc.T(i18n.LoginErrorGeneral))
	}
	if h.remember != nil && c.FormValue("remember-me") == "on" {
		if err := h.remember.Issue(c, user.ID); err != nil {
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("remember-me issue failed")
		}
	}

	h.record(email, source, domain.OutcomeSuccess, "")
	metrics.LoginAttemptsTotal.WithLabelValues(string(domain.FlowSession), string(domain.OutcomeSuccess)).Inc()
	h.log.Info().Str("ip", source).Str("email", user.Email).Msg("admin login succeeded")
	return c.Redirect(http.StatusFound, h.sessions.TakeTarget(c))
}

// classifyFailure records credential failures against source and picks the
// message for the form. Infrastructure errors are not counted.
func (h *AdminHandler) classifyFailure(loc i18n.Localizer, source string, err error) (string, string) {
	credential := errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrAccountInactive)
	if !credential {
		return errorGeneral, loc.T(i18n.LoginErrorGeneral)
	}

	h.attempts.RecordFailure(source)
	if h.attempts.IsBlocked(source) {
		return errorBlocked, loc.T(i18n.LoginErrorBlocked, h.attempts.RemainingLockoutMinutes(source))
	}
	if errors.Is(err, domain.ErrAccountInactive) {
		return errorDisabled, loc.T(i18n.LoginErrorDisabled)
	}
	if remaining := h.attempts.RemainingAttempts(source); remaining > 0 {
		return errorInvalid, loc.T(i18n.LoginErrorCredentials, remaining)
	}
	return errorInvalid, loc.T(i18n.LoginErrorInvalid)
}

func (h *AdminHandler) fail(c echo.Context, category, msg string) error {
	outcome := domain.OutcomeFailure
	if category == errorBlocked {
		outcome = domain.OutcomeBlocked
	}
	metrics.LoginAttemptsTotal.WithLabelValues(string(domain.FlowSession), string(outcome)).Inc()

	h.sessions.SetLoginError(c, msg)
	return c.Redirect(http.StatusFound, middleware.LoginPath+"?error="+category)
}

// Logout ends the session and any remember-me series.
func (h *AdminHandler) Logout(c echo.Context) error {
	if p := middleware.PrincipalFrom(c); p != nil {
		h.log.Info().Str("email", p.User.Email).Msg("admin logout")
	}
	if err := h.sessions.Invalidate(c); err != nil {
		h.log.Error().Err(err).Msg("session invalidate failed")
	}
	if h.remember != nil {
		h.remember.Forget(c)
	}
	return c.Redirect(http.StatusFound, middleware.LoginPath+"?logout")
}

// Dashboard renders the admin landing page.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return c.Redirect(http.StatusFound, middleware.LoginPath)
	}
	return view.Render(c, http.StatusOK, view.DashboardPage(view.DashboardModel{
		Locale:    h.localizer(c).Locale(),
		Principal: p,
		Attempts:  h.attempts.Statistics(),
	}))
}

// LoginAttempts reports the attempt tracker statistics.
//
// @Summary      Login attempt statistics
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.AttemptStatistics
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/security/login-attempts [get]
func (h *AdminHandler) LoginAttempts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.attempts.Statistics())
}

// Forbidden renders the admin 403 page.
func (h *AdminHandler) Forbidden(c echo.Context) error {
	loc := h.localizer(c)
	return view.Render(c, http.StatusForbidden, view.ForbiddenPage(loc.Locale(), loc.T(i18n.ErrorForbidden)))
}

func (h *AdminHandler) record(email, source string, outcome domain.LoginOutcome, reason string) {
	if h.audit == nil {
		return
	}
	h.audit.Enqueue(domain.LoginEvent{
		Flow:      domain.FlowSession,
		Email:     email,
		SourceKey: source,
		Outcome:   outcome,
		Reason:    reason,
		Timestamp: h.now().UTC(),
	})
}
