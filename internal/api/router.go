package api

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sunbooking/booking-system/internal/api/handler"
	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/api/view"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
	"github.com/sunbooking/booking-system/internal/pkg/i18n"
)

// Dependencies is everything the router needs from the composition root.
type Dependencies struct {
	AuthService ports.AuthService
	Tokens      ports.TokenService
	Users       ports.AuthRepository
	Attempts    ports.LoginAttemptTracker
	Audit       ports.LoginAuditor

	SessionStore sessions.Store
	Sessions     *middleware.Sessions
	RememberMe   *middleware.RememberMe

	Bundle      *i18n.Bundle
	CORSOrigins []string
	Log         zerolog.Logger

	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer

	Liveness  echo.HandlerFunc
	Readiness echo.HandlerFunc
}

// publicAPI lists the API routes reachable without a bearer token.
var publicAPI = middleware.AnyOf(
	middleware.Paths("/api/auth/register", "/api/auth/login"),
	middleware.Method(http.MethodGet, middleware.Paths("/api/tours/**", "/api/reviews/**", "/api/categories/**")),
)

// NewSecurityPolicy orders the three authentication groups: public docs, the
// session-based admin site, and the token-based API.
func NewSecurityPolicy(d Dependencies, forbidden echo.HandlerFunc) *middleware.Policy {
	cors := echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, "Accept-Language"},
	})

	return middleware.NewPolicy(
		middleware.RouteGroup{
			Name:  "docs",
			Match: middleware.Paths("/swagger/**"),
		},
		middleware.RouteGroup{
			Name:  "admin",
			Match: middleware.Paths("/admin/**"),
			Chain: []echo.MiddlewareFunc{
				session.Middleware(d.SessionStore),
				d.Sessions.Middleware(),
				middleware.RequireAdmin(d.Sessions, forbidden),
			},
		},
		middleware.RouteGroup{
			Name:  "api",
			Match: middleware.Paths("/api/**"),
			Chain: []echo.MiddlewareFunc{
				cors,
				middleware.TokenAuth(d.Tokens, d.Users, d.Log),
				middleware.RequireAuthentication(publicAPI, d.Bundle),
			},
		},
	)
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	validator, err := handler.NewValidator(d.Bundle)
	if err != nil {
		return nil, err
	}
	e.Validator = validator
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Bundle, d.Log)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	adminHandler := handler.NewAdminHandler(d.AuthService, d.Attempts, d.Sessions, d.RememberMe, d.Audit, d.Bundle, d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "booking",
		Registerer: d.Registerer,
	}))
	e.Use(NewSecurityPolicy(d, adminHandler.Forbidden).Middleware())

	// --- Docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Admin site (session) ---
	e.GET("/admin", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, middleware.DashboardPath)
	})
	e.GET(middleware.LoginPath, adminHandler.LoginForm)
	e.POST(middleware.LoginPath, adminHandler.Login)
	e.POST(middleware.LogoutPath, adminHandler.Logout)
	e.GET(middleware.DashboardPath, adminHandler.Dashboard)
	e.GET("/admin/security/login-attempts", adminHandler.LoginAttempts)
	e.GET("/admin/css/admin.css", view.Stylesheet)

	// --- API (bearer token) ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/api/profile", authHandler.Profile)
	e.GET("/api/admin/security/login-attempts", adminHandler.LoginAttempts, middleware.RequireRole(domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	if d.Liveness != nil {
		e.GET("/health", d.Liveness) // liveness: is the process alive?
	}
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness) // readiness: are dependencies up?
	}
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}

// requestLogger writes one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			group, _ := c.Get("route_group").(string)
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Str("group", group).
				Msg("request")
			return nil
		},
	})
}
