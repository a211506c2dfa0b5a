package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunbooking/booking-system/internal/api/metrics"
	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

// AuthHandler serves the public API registration and login endpoints and the
// authenticated profile.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new USER account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		SourceKey: middleware.ClientIP(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Message: "registered", User: user})
}

// Login authenticates an API client and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), middleware.ClientIP(c), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			metrics.LoginAttemptsTotal.WithLabelValues(string(domain.FlowToken), string(domain.OutcomeBlocked)).Inc()
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAccountInactive):
			metrics.LoginAttemptsTotal.WithLabelValues(string(domain.FlowToken), string(domain.OutcomeFailure)).Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(string(domain.FlowToken), string(domain.OutcomeSuccess)).Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Profile returns the authenticated principal.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.User)
}
