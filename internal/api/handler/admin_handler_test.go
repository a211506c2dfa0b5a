package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/api/middleware"
	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
	"github.com/sunbooking/booking-system/internal/core/service"
	"github.com/sunbooking/booking-system/internal/pkg/i18n"
)

type memRegistry struct {
	current map[string]string
	touched int
}

func (m *memRegistry) Register(_ context.Context, userID, sessionID string, _ time.Duration) error {
	m.current[userID] = sessionID
	return nil
}

func (m *memRegistry) IsCurrent(_ context.Context, userID, sessionID string) (bool, error) {
	return m.current[userID] == sessionID, nil
}

func (m *memRegistry) Touch(_ context.Context, userID, sessionID string, _ time.Duration) error {
	if m.current[userID] == sessionID {
		m.touched++
	}
	return nil
}

func (m *memRegistry) Revoke(_ context.Context, userID, _ string) error {
	delete(m.current, userID)
	return nil
}

type memUsers struct {
	byID map[string]*domain.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.byID[u.ID] = u
	return u, nil
}

type recordingAuditor struct {
	events []domain.LoginEvent
}

func (r *recordingAuditor) Enqueue(e domain.LoginEvent) { r.events = append(r.events, e) }

type cookieJar map[string]*http.Cookie

type adminFixture struct {
	e        *echo.Echo
	auth     *stubAuthService
	attempts *service.LoginAttemptService
	audit    *recordingAuditor
	jar      cookieJar
}

const adminPassword = "correct-horse"

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	users := &memUsers{byID: map[string]*domain.User{
		"a1": {ID: "a1", Name: "Admin", Email: "admin@test.com", Role: domain.RoleAdmin, Active: true},
		"d1": {ID: "d1", Name: "Disabled", Email: "disabled@test.com", Role: domain.RoleAdmin, Active: false},
	}}
	f := &adminFixture{
		e:        echo.New(),
		attempts: service.NewLoginAttemptService(zerolog.Nop()),
		audit:    &recordingAuditor{},
		jar:      cookieJar{},
	}
	f.auth = &stubAuthService{
		authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
			u, err := users.FindByEmail(ctx, email)
			if err != nil || password != adminPassword {
				return nil, domain.ErrInvalidCredentials
			}
			if !u.Active {
				return nil, domain.ErrAccountInactive
			}
			return u, nil
		},
	}

	sessions := middleware.NewSessions(users, &memRegistry{current: map[string]string{}}, nil, time.Hour, zerolog.Nop())
	h := NewAdminHandler(f.auth, f.attempts, sessions, nil, f.audit, i18n.MustNew(), zerolog.Nop())
	store := middleware.NewCookieStore([]byte(strings.Repeat("s", 32)), false, time.Hour)

	admin := f.e.Group("/admin", session.Middleware(store), sessions.Middleware(), middleware.RequireAdmin(sessions, h.Forbidden))
	admin.GET("/login", h.LoginForm)
	admin.POST("/login", h.Login)
	admin.POST("/logout", h.Logout)
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/security/login-attempts", h.LoginAttempts)
	return f
}

func (f *adminFixture) do(method, target, form, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	if form != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	for _, c := range f.jar {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(f.jar, c.Name)
			continue
		}
		f.jar[c.Name] = c
	}
	return rec
}

func (f *adminFixture) login(email, password, ip string) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, middleware.LoginPath, "username="+email+"&password="+password, ip)
}

func location(rec *httptest.ResponseRecorder) string {
	return rec.Header().Get(echo.HeaderLocation)
}

func TestAdminLogin_BlocksSixthAttempt(t *testing.T) {
	f := newAdminFixture(t)

	for i := 1; i <= 4; i++ {
		rec := f.login("admin@test.com", "wrong", "10.0.0.1")
		if location(rec) != middleware.LoginPath+"?error=invalid" {
			t.Fatalf("attempt %d: unexpected redirect %q", i, location(rec))
		}
	}

	// The fifth failure reaches the limit and is reported as blocked.
	rec := f.login("admin@test.com", "wrong", "10.0.0.1")
	if location(rec) != middleware.LoginPath+"?error=blocked" {
		t.Fatalf("fifth attempt: unexpected redirect %q", location(rec))
	}

	before := f.auth.authenticated
	rec = f.login("admin@test.com", adminPassword, "10.0.0.1")
	if location(rec) != middleware.LoginPath+"?error=blocked" {
		t.Fatalf("sixth attempt: unexpected redirect %q", location(rec))
	}
	if f.auth.authenticated != before {
		t.Fatalf("blocked source must not reach the credential check")
	}

	page := f.do(http.MethodGet, middleware.LoginPath+"?error=blocked", "", "10.0.0.1")
	if !strings.Contains(page.Body.String(), "Please try again in 15 minutes.") {
		t.Fatalf("expected blocked message, got %s", page.Body.String())
	}

	last := f.audit.events[len(f.audit.events)-1]
	if last.Outcome != domain.OutcomeBlocked || last.Flow != domain.FlowSession || last.SourceKey != "10.0.0.1" {
		t.Fatalf("unexpected audit event: %+v", last)
	}
}

func TestAdminLogin_FailureMessageShowsRemainingAttempts(t *testing.T) {
	f := newAdminFixture(t)

	f.login("admin@test.com", "wrong", "10.0.0.2")
	page := f.do(http.MethodGet, middleware.LoginPath+"?error=invalid", "", "")
	if !strings.Contains(page.Body.String(), "4 attempts remaining") {
		t.Fatalf("expected remaining attempts in message, got %s", page.Body.String())
	}

	// The message is consumed by the first render.
	page = f.do(http.MethodGet, middleware.LoginPath, "", "")
	if strings.Contains(page.Body.String(), "attempts remaining") {
		t.Fatalf("login error should be shown once")
	}
}

func TestAdminLogin_ShowsLatestFailureOnly(t *testing.T) {
	f := newAdminFixture(t)

	f.login("admin@test.com", "wrong", "10.0.0.9")
	f.login("admin@test.com", "wrong", "10.0.0.9")

	body := f.do(http.MethodGet, middleware.LoginPath+"?error=invalid", "", "").Body.String()
	if !strings.Contains(body, "3 attempts remaining") {
		t.Fatalf("expected latest failure message, got %s", body)
	}
	if strings.Contains(body, "4 attempts remaining") {
		t.Fatalf("stale failure message rendered: %s", body)
	}
}

func TestAdminLogin_DisabledAccount(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.login("disabled@test.com", adminPassword, "10.0.0.3")
	if location(rec) != middleware.LoginPath+"?error=disabled" {
		t.Fatalf("unexpected redirect %q", location(rec))
	}
	if got := f.attempts.RemainingAttempts("10.0.0.3"); got != 4 {
		t.Fatalf("inactive account should count as a failure, remaining=%d", got)
	}
}

func TestAdminLogin_SuccessResetsAttemptsAndShowsDashboard(t *testing.T) {
	f := newAdminFixture(t)

	f.login("admin@test.com", "wrong", "10.0.0.4")
	f.login("admin@test.com", "wrong", "10.0.0.4")
	rec := f.login("admin@test.com", adminPassword, "10.0.0.4")
	if location(rec) != middleware.DashboardPath {
		t.Fatalf("expected dashboard redirect, got %q", location(rec))
	}
	if got := f.attempts.RemainingAttempts("10.0.0.4"); got != service.MaxLoginAttempts {
		t.Fatalf("success should reset the counter, remaining=%d", got)
	}

	dash := f.do(http.MethodGet, middleware.DashboardPath, "", "")
	if dash.Code != http.StatusOK || !strings.Contains(dash.Body.String(), "admin@test.com") {
		t.Fatalf("expected dashboard, got %d", dash.Code)
	}

	// An authenticated admin skips the login form.
	if rec := f.do(http.MethodGet, middleware.LoginPath, "", ""); location(rec) != middleware.DashboardPath {
		t.Fatalf("expected redirect to dashboard, got %d %q", rec.Code, location(rec))
	}
}

func TestAdminLogin_LogoutShowsNotice(t *testing.T) {
	f := newAdminFixture(t)

	f.login("admin@test.com", adminPassword, "10.0.0.5")
	rec := f.do(http.MethodPost, middleware.LogoutPath, "", "")
	if location(rec) != middleware.LoginPath+"?logout" {
		t.Fatalf("unexpected logout redirect %q", location(rec))
	}

	page := f.do(http.MethodGet, middleware.LoginPath+"?logout", "", "")
	if !strings.Contains(page.Body.String(), "You have been signed out.") {
		t.Fatalf("expected logout notice")
	}
	if rec := f.do(http.MethodGet, middleware.DashboardPath, "", ""); rec.Code != http.StatusFound {
		t.Fatalf("dashboard must require a session after logout, got %d", rec.Code)
	}
}

func TestAdminLogin_Statistics(t *testing.T) {
	f := newAdminFixture(t)

	f.login("admin@test.com", "wrong", "10.0.0.6")
	f.login("admin@test.com", adminPassword, "10.0.0.7")

	rec := f.do(http.MethodGet, "/admin/security/login-attempts", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats ports.AttemptStatistics
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if stats.TotalTrackedSources != 1 || stats.MaxAttempts != service.MaxLoginAttempts || stats.LockoutDurationMinutes != 15 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
