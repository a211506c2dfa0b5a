package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

const principalKey = "principal"

// SetPrincipal attaches the authenticated principal to the request.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the request's principal, or nil when unauthenticated.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}
