package middleware

import (
	"net"
	"strings"

	"github.com/labstack/echo/v4"
)

// ClientIP returns the source key used to bucket login attempts: the first
// X-Forwarded-For entry when present, otherwise the peer address.
//
// The forwarded header is taken as-is, so a client talking to the server
// directly can choose its own key.
func ClientIP(c echo.Context) string {
	req := c.Request()
	if xff := req.Header.Get(echo.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
