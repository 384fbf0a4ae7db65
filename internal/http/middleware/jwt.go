package middleware

import (
	"net/http"
	"strings"

	"drawguess/internal/service"

	"github.com/gin-gonic/gin"
)

const loginKey = "login"

// JWT requires a "Bearer <token>" Authorization header and stores the
// token's login in the context under "login".
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			JWTRejected.Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		login, err := service.ParseJWT(token)
		if err != nil {
			JWTRejected.Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(loginKey, login)
		c.Next()
	}
}
