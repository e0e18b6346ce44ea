package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

const (
	// TokenCookie carries the session token set at login
	TokenCookie = "token"

	userKey   = "user"
	userIDKey = "user_id"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// UserLoader loads the signed-in user with their settings
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func bearerToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// Session resolves the optional user behind the request. It never rejects:
// anonymous requests simply carry no user. A token that is invalid or names
// a deleted user has its cookie cleared.
func Session(validator TokenValidator, users UserLoader, secureCookies bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			log.Debug("ignoring invalid session token", zap.Error(err))
			ClearSessionCookie(c, secureCookies)
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if service.IsNotFound(err) {
				log.Debug("session user not found", zap.String("user_id", claims.UserID.String()))
				ClearSessionCookie(c, secureCookies)
			} else {
				// keep the cookie, the user may still exist
				log.Warn("failed to load session user", zap.String("user_id", claims.UserID.String()), zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// SetSessionCookie stores token in an http-only cookie
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	SetSessionCookie(c, "", -1, secure)
}

// CurrentUser returns the signed-in user, or nil for anonymous requests
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireAuth rejects anonymous requests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// GuestOnly rejects requests that already carry a session
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "already authenticated"})
			return
		}
		c.Next()
	}
}
