package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/pkg/i18n"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the shared envelope {status, error, message, path, timestamp}.
func NewHTTPErrorHandler(bundle *i18n.Bundle, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		loc := bundle.For(c.Request().Header.Get("Accept-Language"))
		code, msg := resolveError(err, loc, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = middleware.WriteError(c, code, msg)
	}
}

func resolveError(err error, loc i18n.Localizer, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		c.Response().Header().Set("Retry-After", strconv.Itoa(rl.RemainingMinutes*60))
		return http.StatusTooManyRequests, loc.T(i18n.ErrorRateLimited, rl.RemainingMinutes)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, loc.T(i18n.ErrorInvalidCredentials)
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnauthorized, loc.T(i18n.ErrorAccountInactive)
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, loc.T(i18n.ErrorUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, loc.T(i18n.ErrorForbidden)
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, loc.T(i18n.ErrorUserExists)
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, loc.T(i18n.ErrorNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, validationMessage(err, loc)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, loc.T(i18n.ErrorInternal)
}

// validationMessage joins the translated field errors, or falls back to the
// generic invalid-input message.
func validationMessage(err error, loc i18n.Localizer) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return loc.T(i18n.ErrorInvalidInput)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(loc.Translator()))
	}
	return strings.Join(msgs, "; ")
}
