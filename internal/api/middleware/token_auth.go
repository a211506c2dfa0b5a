package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/api/metrics"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

const bearerPrefix = "Bearer "

// TokenAuth authenticates API requests from the Authorization bearer token.
// It never rejects a request: any failure is logged and the request continues
// without a principal, leaving the decision to RequireAuthentication.
func TokenAuth(tokens ports.TokenService, users ports.AuthRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" {
				return next(c)
			}

			subject, err := tokens.Verify(token)
			if err != nil {
				reject(c, log, tokenFailureReason(err), "")
				return next(c)
			}

			user, err := users.FindByEmail(c.Request().Context(), subject)
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				reject(c, log, "unknown_subject", subject)
				return next(c)
			case err != nil:
				log.Error().Err(err).Str("subject", subject).Msg("token principal lookup failed")
				return next(c)
			case !user.Active:
				reject(c, log, "inactive", subject)
				return next(c)
			}

			if !tokens.VerifyMatchesPrincipal(token, user.Email) {
				reject(c, log, "mismatch", subject)
				return next(c)
			}

			SetPrincipal(c, domain.NewPrincipal(user))
			return next(c)
		}
	}
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "signature"
	default:
		return "malformed"
	}
}

func reject(c echo.Context, log zerolog.Logger, reason, subject string) {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	ev := log.Warn().
		Str("reason", reason).
		Str("ip", ClientIP(c)).
		Str("path", c.Request().URL.Path)
	if subject != "" {
		ev = ev.Str("subject", subject)
	}
	ev.Msg("bearer token rejected")
}
