package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// callerIDKey is the Gin context key holding the resolved caller identity.
	callerIDKey = "callerID"

	// CallerLocalhost is reported for loopback callers in any notation.
	CallerLocalhost = "localhost"
	// CallerUnknown is reported when no address can be resolved.
	CallerUnknown = "unknown"
)

// CallerID resolves the caller identity once per request and stores it in the
// Gin context. Proxy headers are consulted in order: first entry of
// X-Forwarded-For, then X-Real-IP, then X-Client-IP; the socket peer is used
// when none is set.
//
// There is no authentication behind this value; it only groups a caller's
// chat history and profile.
func CallerID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(callerIDKey, ResolveCaller(c.Request))
		c.Next()
	}
}

// CallerIDFrom returns the identity stored by CallerID, resolving it from the
// request when the middleware did not run.
func CallerIDFrom(c *gin.Context) string {
	if v, ok := c.Get(callerIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ResolveCaller(c.Request)
}

// ResolveCaller derives the caller identity from r.
func ResolveCaller(r *http.Request) string {
	if r == nil {
		return CallerUnknown
	}
	raw := ""
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		raw = strings.Split(xff, ",")[0]
	}
	if strings.TrimSpace(raw) == "" {
		raw = r.Header.Get("X-Real-IP")
	}
	if strings.TrimSpace(raw) == "" {
		raw = r.Header.Get("X-Client-IP")
	}
	if strings.TrimSpace(raw) == "" {
		raw = r.RemoteAddr
	}
	return normalizeCaller(raw)
}

func normalizeCaller(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return CallerUnknown
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.Trim(s, "[]")
	if s == "" {
		return CallerUnknown
	}
	if ip := net.ParseIP(s); ip != nil {
		if ip.IsLoopback() {
			return CallerLocalhost
		}
		return s
	}
	// unparsable values such as zone-suffixed addresses
	if strings.Contains(s, "127.0.0.1") || strings.Contains(s, "::1") {
		return CallerLocalhost
	}
	return s
}
