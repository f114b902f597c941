package middleware

import (
	"net/http"
	"strings"

	"movitex/internal/profile"
	"movitex/internal/shared/config"
	"movitex/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	TabIDHeader = "X-Tab-ID"
	tabIDKey    = "tab_id"
)

// OptionalAuth validates a JWT if present but doesn't require it. A valid
// access token marks the request context as authenticated.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			c.Next()
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID != "" {
			c.Set("user_id", userID)
			c.Request = c.Request.WithContext(profile.WithUserID(c.Request.Context(), userID))
		}

		c.Next()
	}
}

// RequireTabID scopes the request to one browser tab. The id must be a UUID.
func RequireTabID() gin.HandlerFunc {
	return func(c *gin.Context) {
		tabID := strings.TrimSpace(c.GetHeader(TabIDHeader))
		if tabID == "" {
			response.RespondJSON(c, "error", http.StatusBadRequest, TabIDHeader+" header is required", nil, nil)
			c.Abort()
			return
		}
		if _, err := uuid.Parse(tabID); err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, TabIDHeader+" must be a UUID", nil, nil)
			c.Abort()
			return
		}

		c.Set(tabIDKey, tabID)
		c.Next()
	}
}

// TabID returns the tab id set by RequireTabID.
func TabID(c *gin.Context) string {
	return c.GetString(tabIDKey)
}
