package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tailor_shop/internal/models"
	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
)

// RequireAuth resolves the bearer token into a session or aborts with 401.
func RequireAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		session, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// OptionalAuth attaches the session of a valid bearer token and lets every
// request through.
func OptionalAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if ok && strings.TrimSpace(token) != "" {
			if session, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token)); err == nil {
				c.Set(sessionKey, session)
			}
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the session has one of roles. It runs
// after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		for _, r := range roles {
			if session.Role == string(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
