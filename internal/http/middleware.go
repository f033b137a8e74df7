package http

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/qanda/internal/models"
	"github.com/sujalbistaa/qanda/internal/store"
)

const (
	sessionCookie = "session_id"
	identityKey   = "identity"
	loginPath     = "/login/"
)

// Identity is the authenticated caller of one request.
type Identity struct {
	User      *models.User
	SessionID string
}

// CurrentIdentity returns the request's caller, if any. Handlers must get
// the user from here and nowhere else.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}

// Authenticate resolves the session cookie into an Identity. Unknown,
// expired or deactivated sessions leave the request anonymous and the
// stale cookie is cleared.
func Authenticate(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			c.Next()
			return
		}
		user, err := st.SessionUser(sid)
		if err != nil {
			c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
			c.Next()
			return
		}
		c.Set(identityKey, &Identity{User: user, SessionID: sid})
		c.Next()
	}
}

// RequireLogin sends anonymous callers to the login page. With withNext
// the original path rides along as ?next=.
func RequireLogin(withNext bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); ok {
			c.Next()
			return
		}
		target := loginPath
		if withNext {
			target += "?next=" + escapeNext(c.Request.URL.RequestURI())
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// AnonymousOnly bounces signed-in users off entry pages to the index.
func AnonymousOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// escapeNext query-escapes a path but leaves its slashes readable.
func escapeNext(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

// safeNext only lets local absolute paths through.
func safeNext(next string) (string, bool) {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	return next, true
}

// AdminAuthMiddleware checks the X-Admin-Token header against token.
func AdminAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-Admin-Token")
		if supplied == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Admin token required"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Invalid admin token"})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds basic security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "same-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")
		c.Next()
	}
}
