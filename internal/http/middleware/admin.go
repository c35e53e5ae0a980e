package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAdminCode carries the shared admin code on mutating admin routes.
const HeaderAdminCode = "X-Admin-Code"

// RequireAdmin rejects requests whose X-Admin-Code header does not match code.
// An empty code leaves the routes open.
func RequireAdmin(code string) gin.HandlerFunc {
	want := []byte(code)
	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(HeaderAdminCode))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			LoggerFrom(c).Warn().Str("caller_id", CallerIDFrom(c)).Msg("admin code rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "invalid admin code",
			})
			return
		}
		c.Next()
	}
}
