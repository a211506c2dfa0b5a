package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMatchPath(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"/admin/login", "/admin/login", true},
		{"/admin/login", "/admin/login/x", false},
		{"/admin/**", "/admin", true},
		{"/admin/**", "/admin/users/1", true},
		{"/admin/**", "/administrator", false},
		{"/api/tours/*", "/api/tours/7", true},
		{"/api/tours/*", "/api/tours/7/reviews", false},
		{"/api/tours/*", "/api/tours/", false},
	}
	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.want {
			t.Errorf("matchPath(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}

// tag returns a chain element that records which group ran.
func tag(name string, trail *[]string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			*trail = append(*trail, name)
			return next(c)
		}
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	var trail []string
	policy := NewPolicy(
		RouteGroup{Name: "docs", Match: Paths("/swagger/**"), Chain: []echo.MiddlewareFunc{tag("docs", &trail)}},
		RouteGroup{Name: "admin", Match: Paths("/admin/**"), Chain: []echo.MiddlewareFunc{tag("session", &trail), tag("admin", &trail)}},
		RouteGroup{Name: "api", Match: Paths("/api/**", "/admin/api-overlap/**"), Chain: []echo.MiddlewareFunc{tag("token", &trail)}},
	)

	e := echo.New()
	cases := map[string]string{
		"/swagger/index.html":     "docs",
		"/admin/dashboard":        "session,admin",
		"/admin/api-overlap/call": "session,admin",
		"/api/profile":            "token",
		"/health":                 "",
	}
	for path, want := range cases {
		trail = nil
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())

		reached := false
		h := policy.Middleware()(func(echo.Context) error { reached = true; return nil })
		if err := h(c); err != nil {
			t.Fatalf("%s: unexpected error %v", path, err)
		}
		if !reached {
			t.Fatalf("%s: handler not reached", path)
		}
		if got := strings.Join(trail, ","); got != want {
			t.Errorf("%s: chain %q, want %q", path, got, want)
		}
	}
}

func TestPolicy_Resolve(t *testing.T) {
	policy := NewPolicy(
		RouteGroup{Name: "docs", Match: Paths("/swagger/**")},
		RouteGroup{Name: "api", Match: AnyOf(Method(http.MethodGet, Paths("/api/tours/**")), Paths("/api/**"))},
	)

	g, ok := policy.Resolve(httptest.NewRequest(http.MethodPost, "/api/tours/1", nil))
	if !ok || g.Name != "api" {
		t.Fatalf("expected api group, got %q ok=%v", g.Name, ok)
	}
	if _, ok := policy.Resolve(httptest.NewRequest(http.MethodGet, "/metrics", nil)); ok {
		t.Fatalf("expected no group for /metrics")
	}
	if names := len(policy.Groups()); names != 2 {
		t.Fatalf("expected 2 groups, got %d", names)
	}
}
