// Package view renders the admin site's HTML pages.
package view

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

// LoginModel is everything the login page shows.
type LoginModel struct {
	Locale   string
	Error    string
	Notice   string
	Username string
}

type DashboardModel struct {
	Locale    string
	Principal *domain.Principal
	Attempts  ports.AttemptStatistics
}

// Render writes node as an HTML response.
func Render(c echo.Context, status int, node Node) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return node.Render(c.Response())
}

func LoginPage(m LoginModel) Node {
	content := []Node{
		H1(Text("Sun Booking")),
		P(Text("Sign in to the back office.")),
	}
	if m.Notice != "" {
		content = append(content, P(Class("notice"), Role("status"), Text(m.Notice)))
	}
	if m.Error != "" {
		content = append(content, P(Class("error"), Role("alert"), Text(m.Error)))
	}
	content = append(content,
		Form(
			Method("post"),
			Action("/admin/login"),
			Class("login-form"),
			Label(For("username"), Text("Email")),
			Input(Type("email"), ID("username"), Name("username"), Value(m.Username), AutoComplete("username"), Required()),
			Label(For("password"), Text("Password")),
			Input(Type("password"), ID("password"), Name("password"), AutoComplete("current-password"), Required()),
			Label(
				Input(Type("checkbox"), Name("remember-me"), Value("on")),
				Text(" Remember me"),
			),
			Button(Type("submit"), Class("btn btn-primary"), Text("Sign In")),
		),
	)

	return page(m.Locale, "Sign in", Main(Class("login-wrap"), Group(content)))
}

func DashboardPage(m DashboardModel) Node {
	user := m.Principal.User
	return page(m.Locale, "Dashboard",
		Header(
			Class("topbar"),
			Span(Text(fmt.Sprintf("%s (%s)", user.Name, user.Email))),
			Form(
				Method("post"),
				Action("/admin/logout"),
				Button(Type("submit"), Class("btn"), Text("Sign out")),
			),
		),
		Main(
			H1(Text("Dashboard")),
			H2(Text("Login protection")),
			Table(
				Tr(Th(Text("Tracked sources")), Td(Text(fmt.Sprint(m.Attempts.TotalTrackedSources)))),
				Tr(Th(Text("Currently blocked")), Td(Text(fmt.Sprint(m.Attempts.CurrentlyBlocked)))),
				Tr(Th(Text("Max attempts")), Td(Text(fmt.Sprint(m.Attempts.MaxAttempts)))),
				Tr(Th(Text("Lockout (minutes)")), Td(Text(fmt.Sprint(m.Attempts.LockoutDurationMinutes)))),
			),
		),
	)
}

func ForbiddenPage(locale, message string) Node {
	return page(locale, "Forbidden",
		Main(
			Class("login-wrap"),
			H1(Text("403")),
			P(Class("error"), Text(message)),
			A(Href("/admin/login"), Text("Sign in with another account")),
		),
	)
}

func page(locale, title string, body ...Node) Node {
	if locale == "" {
		locale = "en"
	}
	return HTML(
		Lang(locale),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Sun Booking Admin")),
			Link(Rel("stylesheet"), Href("/admin/css/admin.css")),
		),
		Body(Group(body)),
	)
}

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0;background:#f4f6f9;color:#222}
.login-wrap{max-width:360px;margin:8vh auto;background:#fff;padding:2rem;border-radius:8px;box-shadow:0 1px 4px rgba(0,0,0,.1)}
.login-form{display:flex;flex-direction:column;gap:.5rem}
.login-form input[type=email],.login-form input[type=password]{padding:.5rem;border:1px solid #ccc;border-radius:4px}
.btn{padding:.5rem 1rem;border:0;border-radius:4px;background:#ddd;cursor:pointer}
.btn-primary{background:#0b6efd;color:#fff}
.error{color:#b00020}
.notice{color:#0a6b2d}
.topbar{display:flex;justify-content:space-between;align-items:center;padding:.75rem 1.5rem;background:#fff;border-bottom:1px solid #e3e3e3}
main{padding:1.5rem}
table{border-collapse:collapse}
th,td{text-align:left;padding:.25rem 1rem .25rem 0}
`

// Stylesheet serves the admin site's CSS.
func Stylesheet(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(stylesheet))
}
