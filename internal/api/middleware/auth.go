package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/auth"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

// ContextKeySession holds the key for the caller session in Gin context.
const ContextKeySession = "session"

// SessionFromContext returns the caller session set by the auth middleware.
// Routes without auth middleware yield the guest session.
func SessionFromContext(c *gin.Context) session.Session {
	if v, exists := c.Get(ContextKeySession); exists {
		if sess, ok := v.(session.Session); ok {
			return sess
		}
	}
	return session.Guest()
}

// AuthMiddleware creates a Gin middleware for JWT authentication. It rejects
// requests without a valid bearer token and stores the resulting session.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessionFromHeader(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves a session when a bearer token is present
// and falls back to the guest session otherwise. Used on public routes that
// still want to know who is asking.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Set(ContextKeySession, session.Guest())
			c.Next()
			return
		}
		sess, err := sessionFromHeader(c, jwtSecret)
		if err != nil {
			// A presented but invalid token is rejected, not downgraded
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// AdminMiddleware rejects sessions that do not claim the admin role. It is a
// fast gate only; services verify the stored role on every admin operation.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFromContext(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator privileges required"})
			return
		}
		c.Next()
	}
}

func sessionFromHeader(c *gin.Context, jwtSecret string) (session.Session, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return session.Session{}, fmt.Errorf("Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return session.Session{}, fmt.Errorf("Authorization header format must be Bearer {token}")
	}

	claims, err := auth.ValidateJWT(parts[1], jwtSecret)
	if err != nil {
		return session.Session{}, fmt.Errorf("Invalid or expired token: %v", err)
	}

	userID, err := utils.ParseSixID(claims.UserID)
	if err != nil {
		return session.Session{}, fmt.Errorf("Invalid user ID in token")
	}

	return session.ForUser(userID, claims.Role), nil
}
