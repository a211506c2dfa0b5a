package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

// RequireRole enforces role-based access control on API routes. A missing
// principal is ErrUnauthorized, a principal without any of roles is
// ErrForbidden; both are rendered by the central error handler.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil {
				return domain.ErrUnauthorized
			}
			if _, ok := allowed[p.Authority]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
