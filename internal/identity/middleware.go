package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"

// RequireAuth verifies the request credential and injects the AuthContext
// into the request context. It does not perform role checks; those belong to
// internal/rbac and run lazily on the routes that mutate shared state.
func RequireAuth(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := strings.TrimSpace(c.GetHeader(authorizationHeader))

		var cookieValue string
		if cookie, err := c.Request.Cookie(g.SessionCookieName()); err == nil {
			cookieValue = cookie.Value
		}

		ac, err := g.Authenticate(c.Request.Context(), authorization, cookieValue)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnauthenticated):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			case errors.Is(err, ErrUnavailable):
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "try again later"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
			}
			return
		}

		c.Request = c.Request.WithContext(WithAuthContext(c.Request.Context(), ac))

		// Also store on gin context for handler convenience.
		c.Set("uid", ac.UID)

		c.Next()
	}
}
