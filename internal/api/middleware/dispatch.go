package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequestMatcher selects requests for a route group.
type RequestMatcher func(r *http.Request) bool

// Paths matches the request path against ant-style patterns: an exact path,
// "/prefix/*" for one further segment, or "/prefix/**" for the prefix itself
// and everything below it.
func Paths(patterns ...string) RequestMatcher {
	return func(r *http.Request) bool {
		for _, p := range patterns {
			if matchPath(p, r.URL.Path) {
				return true
			}
		}
		return false
	}
}

// Method narrows m to requests using method.
func Method(method string, m RequestMatcher) RequestMatcher {
	return func(r *http.Request) bool {
		return r.Method == method && m(r)
	}
}

// AnyOf matches when at least one of ms does.
func AnyOf(ms ...RequestMatcher) RequestMatcher {
	return func(r *http.Request) bool {
		for _, m := range ms {
			if m(r) {
				return true
			}
		}
		return false
	}
}

func matchPath(pattern, path string) bool {
	switch {
	case strings.HasSuffix(pattern, "/**"):
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	case strings.HasSuffix(pattern, "/*"):
		prefix := strings.TrimSuffix(pattern, "*")
		rest, ok := strings.CutPrefix(path, prefix)
		return ok && rest != "" && !strings.Contains(rest, "/")
	default:
		return path == pattern
	}
}

// RouteGroup binds a matcher to the middleware chain run for its requests.
type RouteGroup struct {
	Name  string
	Match RequestMatcher
	Chain []echo.MiddlewareFunc
}

// Policy is an ordered list of route groups. The first group whose matcher
// accepts a request decides its chain; later groups are never consulted.
// Requests no group matches run with no authentication chain.
type Policy struct {
	groups []RouteGroup
}

func NewPolicy(groups ...RouteGroup) *Policy {
	return &Policy{groups: groups}
}

// Groups returns the groups in evaluation order.
func (p *Policy) Groups() []RouteGroup {
	return append([]RouteGroup(nil), p.groups...)
}

// Resolve returns the group that handles r.
func (p *Policy) Resolve(r *http.Request) (RouteGroup, bool) {
	for _, g := range p.groups {
		if g.Match(r) {
			return g, true
		}
	}
	return RouteGroup{}, false
}

// Middleware runs the chain of the resolved group in front of next.
func (p *Policy) Middleware() echo.MiddlewareFunc {
	chains := make([]func(echo.HandlerFunc) echo.HandlerFunc, len(p.groups))
	for i, g := range p.groups {
		chains[i] = compose(g.Chain)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for i, g := range p.groups {
				if g.Match(c.Request()) {
					c.Set("route_group", g.Name)
					return chains[i](next)(c)
				}
			}
			return next(c)
		}
	}
}

func compose(chain []echo.MiddlewareFunc) func(echo.HandlerFunc) echo.HandlerFunc {
	return func(h echo.HandlerFunc) echo.HandlerFunc {
		for i := len(chain) - 1; i >= 0; i-- {
			h = chain[i](h)
		}
		return h
	}
}
