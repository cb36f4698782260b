package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/auth"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// Context keys for values extracted from a validated token
const (
	ContextKeyClaims      = "jwt_claims"
	ContextKeyOperatorID  = "jwt_operator_id"
	ContextKeyUsername    = "jwt_username"
	ContextKeyPermissions = "jwt_permissions"
)

// JWTMiddlewareConfig configures the JWT authentication middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService

	// TokenBlacklist is optional. When set, revoked tokens and operators
	// with a global revocation are rejected.
	TokenBlacklist auth.TokenBlacklist

	// SkipPaths are exact request paths that bypass authentication
	SkipPaths []string

	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string

	// OnError overrides the default error response
	OnError func(c *gin.Context, code string, message string)

	Logger *zap.Logger
}

// JWTAuth returns a middleware that validates bearer tokens and stores
// the operator identity in the request context.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, dto.ErrCodeUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			code, message := mapTokenError(err)
			handleAuthError(c, cfg, code, message)
			return
		}

		if cfg.TokenBlacklist != nil {
			revoked, err := cfg.TokenBlacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Blacklist outage: let the request through, the token
				// signature and expiry were already verified.
				cfg.Logger.Warn("token blacklist check failed",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				handleAuthError(c, cfg, dto.ErrCodeTokenInvalid, "token has been revoked")
				return
			}

			if claims.IssuedAt != nil {
				opRevoked, err := cfg.TokenBlacklist.IsOperatorRevoked(
					c.Request.Context(), claims.OperatorID, claims.IssuedAt.Time)
				if err != nil {
					cfg.Logger.Warn("operator revocation check failed",
						zap.String("operator_id", claims.OperatorID),
						zap.Error(err))
				} else if opRevoked {
					handleAuthError(c, cfg, dto.ErrCodeTokenInvalid, "all sessions for this operator have been revoked")
					return
				}
			}
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyOperatorID, claims.OperatorID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyPermissions, claims.Permissions)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("authorization header malformed")
	}
	return parts[1], nil
}

func mapTokenError(err error) (code string, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "token is not valid yet"
	case errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingOperator):
		return dto.ErrCodeTokenInvalid, "token claims are invalid"
	default:
		return dto.ErrCodeTokenInvalid, "token is invalid"
	}
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, code string, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, code, message)
		c.Abort()
		return
	}

	status := dto.GetHTTPStatus(code)
	if status == http.StatusInternalServerError {
		status = http.StatusUnauthorized
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims returns the validated claims stored by JWTAuth
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetJWTOperatorID returns the authenticated operator ID
func GetJWTOperatorID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextKeyOperatorID)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

// GetJWTUsername returns the authenticated operator username
func GetJWTUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextKeyUsername)
	if !exists {
		return "", false
	}
	username, ok := value.(string)
	return username, ok
}

// GetJWTPermissions returns the permissions carried by the token
func GetJWTPermissions(c *gin.Context) ([]string, bool) {
	value, exists := c.Get(ContextKeyPermissions)
	if !exists {
		return nil, false
	}
	permissions, ok := value.([]string)
	return permissions, ok
}
