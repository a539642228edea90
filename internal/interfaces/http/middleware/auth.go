package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/interfaces/http/response"
	"equi-cloud.backend/pkg/identity"
	"equi-cloud.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for the authenticated user id
	UserIDKey = "userId"
	// LegacyAuthKey marks requests authenticated with a legacy-format secret
	LegacyAuthKey = "legacyAuth"
)

// unauthorized rejects the request. Every authentication failure gets the
// same status and body so a caller cannot probe which part of a forged
// token was wrong.
func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "Unauthorized",
	})
}

// AuthMiddleware authenticates requests by the self-contained bearer token.
// allowed, when non-nil, gates which user ids may use the service at all.
func AuthMiddleware(allowed func(userID string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			unauthorized(c)
			return
		}

		// The Bearer prefix is optional: long-deployed clients send the
		// raw token.
		userID, legacy, err := identity.VerifyToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			unauthorized(c)
			return
		}

		if allowed != nil && !allowed(userID) {
			response.ErrorWithError(c, http.StatusForbidden, domainerrors.CodeForbidden,
				"Account is not permitted to use this service")
			c.Abort()
			return
		}

		if legacy {
			logger.Warn(c.Request.Context(), "request authenticated with legacy secret",
				zap.String("user_id", userID))
		}

		c.Set(UserIDKey, userID)
		c.Set(LegacyAuthKey, legacy)
		c.Next()
	}
}

// GetUserID gets the authenticated user id from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	return userID.(string), true
}
