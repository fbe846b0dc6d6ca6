package oauth

import (
	"net/http"
	"strings"
	"time"
)

// CookieHeader renders cookies as the value of a Cookie request header.
func CookieHeader(cookies []*http.Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// CookieExpiry finds the expiry of the named cookie among cookies parsed
// from Set-Cookie headers. Max-Age takes priority over Expires, the zero
// time is returned when the cookie is absent or a session cookie.
func CookieExpiry(cookies []*http.Cookie, name string, now time.Time) time.Time {
	for _, c := range cookies {
		if c.Name != name {
			continue
		}
		if c.MaxAge > 0 {
			return now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if !c.Expires.IsZero() {
			return c.Expires
		}
		return time.Time{}
	}
	return time.Time{}
}
