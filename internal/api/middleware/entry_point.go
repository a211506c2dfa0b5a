package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sunbooking/booking-system/internal/pkg/i18n"
)

// ErrorBody is the JSON error envelope shared by every API failure.
type ErrorBody struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteError renders the envelope for status.
func WriteError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request().URL.Path,
		Timestamp: time.Now().UTC(),
	})
}

// RequireAuthentication answers 401 for requests that carry no principal,
// unless public matches them.
func RequireAuthentication(public RequestMatcher, bundle *i18n.Bundle) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if public(c.Request()) || PrincipalFrom(c) != nil {
				return next(c)
			}
			msg := bundle.For(c.Request().Header.Get("Accept-Language")).T(i18n.ErrorUnauthorized)
			return WriteError(c, http.StatusUnauthorized, msg)
		}
	}
}
