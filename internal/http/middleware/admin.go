package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderAdminToken carries the static admin credential.
const HeaderAdminToken = "X-Admin-Token"

// ctxKeyUserID is the Gin context key for the authenticated caller.
const ctxKeyUserID = "userID"

const (
	adminCaller     = "admin"
	anonymousCaller = "anonymous"
)

// CallerID returns the identity set by AdminAuth, or "anonymous".
func CallerID(c *gin.Context) string {
	if s := c.GetString(ctxKeyUserID); s != "" {
		return s
	}
	return anonymousCaller
}

// AdminAuth guards admin routes with a static token, accepted either in
// X-Admin-Token or as "Authorization: Bearer <token>". An empty configured
// token closes the routes entirely (403) so a missing setting never opens
// them. A missing or wrong token yields 401.
func AdminAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		if len(want) == 0 {
			reject(c, GroupAdmin, http.StatusForbidden, "forbidden", "admin routes are disabled")
			return
		}
		got := strings.TrimSpace(c.GetHeader(HeaderAdminToken))
		if got == "" {
			if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
				got = strings.TrimSpace(h[7:])
			}
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			reject(c, GroupAdmin, http.StatusUnauthorized, "unauthorized", "admin token required")
			return
		}
		c.Set(ctxKeyUserID, adminCaller)
		c.Next()
	}
}

// abortJSON writes the standard error envelope from middleware.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
