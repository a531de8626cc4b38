package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storeline/backend/internal/infrastructure/auth"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// JWTConfig holds configuration for the authentication middleware
type JWTConfig struct {
	Validator TokenValidator
	// Blacklist is consulted for every token. A lookup failure rejects the request.
	Blacklist auth.TokenBlacklist
	// Optional lets anonymous requests through; a presented token must still be valid
	Optional bool
}

// Authenticate validates the bearer token and stores its claims in the context
func Authenticate(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			if cfg.Optional {
				c.Next()
				return
			}
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		tokenString, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || strings.TrimSpace(tokenString) == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		claims, err := cfg.Validator.Validate(strings.TrimSpace(tokenString))
		if err != nil {
			log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := cfg.Blacklist.IsRevoked(ctx, claims.ID)
			if err != nil {
				log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
				abortWithError(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Authentication is temporarily unavailable")
				return
			}
			if revoked {
				abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenRevoked, "Token has been revoked")
				return
			}
		}

		c.Set(ClaimsKey, claims)
		ctx, _ = logger.WithUserID(ctx, claims.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
