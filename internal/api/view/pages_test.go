package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

func TestLoginPage_EscapesAndShowsMessages(t *testing.T) {
	var sb strings.Builder
	err := LoginPage(LoginModel{
		Locale:   "vi",
		Error:    "bad <script>",
		Notice:   "signed out",
		Username: "a@b.c",
	}).Render(&sb)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	for _, want := range []string{`lang="vi"`, "bad &lt;script&gt;", "signed out", `name="remember-me"`, `value="a@b.c"`} {
		if !strings.Contains(out, want) {
			t.Errorf("login page missing %q", want)
		}
	}
}

func TestRender_SetsStatusAndContentType(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), rec)

	model := DashboardModel{
		Principal: domain.NewPrincipal(&domain.User{Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}),
		Attempts:  ports.AttemptStatistics{TotalTrackedSources: 3, CurrentlyBlocked: 1, MaxAttempts: 5, LockoutDurationMinutes: 15},
	}
	if err := Render(c, http.StatusOK, DashboardPage(model)); err != nil {
		t.Fatalf("render: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "root@example.com") {
		t.Fatalf("dashboard missing principal email")
	}
}
