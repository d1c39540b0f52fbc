package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// basicAuth checks HTTP basic credentials against a bcrypt hash.
// An empty hash disables authentication.
func basicAuth(user, passwordHash string, logger zerolog.Logger) gin.HandlerFunc {
	if passwordHash == "" {
		logger.Warn().Msg("DASHBOARD_PASSWORD_HASH not set, API is unauthenticated")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)) != nil {
			c.Header("WWW-Authenticate", `Basic realm="botview"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
