package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasklist/internal/logger"
	"tasklist/internal/models"
	"tasklist/internal/services"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	// AccountKey holds the *models.Account loaded for the request.
	AccountKey   = "account"
	AccountIDKey = "account_id"
)

// AuthMiddleware accepts a bearer token, reloads the account it names and
// requires it to be verified. Claims alone are never trusted for live state.
func AuthMiddleware(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader(AuthorizationHeader))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if len(header) < len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format. Use: Bearer <token>"})
			return
		}
		token := strings.TrimSpace(header[len(BearerPrefix):])

		ctx := c.Request.Context()
		account, err := auth.Authenticate(ctx, token)
		if err != nil {
			logger.Info(ctx, "request not authenticated", zap.String("path", c.Request.URL.Path), zap.Error(err))
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			case errors.Is(err, services.ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			case errors.Is(err, services.ErrNotVerified):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(AccountKey, account)
		c.Set(AccountIDKey, account.ID)
		c.Next()
	}
}

// CurrentAccount returns the account stored by AuthMiddleware.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(AccountKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*models.Account)
	return a, ok && a != nil
}
