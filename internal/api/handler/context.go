package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/core/domain"
)

// currentPrincipal returns the authenticated principal or ErrUnauthorized.
// Routes behind RequireAuthentication always have one; the check guards
// against a handler being mounted outside its group.
func currentPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil || p.User == nil {
		return nil, domain.ErrUnauthorized
	}
	return p, nil
}
