package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// PermissionConfig configures the permission middlewares
type PermissionConfig struct {
	Logger *zap.Logger

	// OnDenied overrides the default 403 response
	OnDenied func(c *gin.Context, missing []string)
}

// RequirePermission returns a middleware that rejects requests whose
// token does not carry the given permission. Must run after JWTAuth.
func RequirePermission(permission string, cfg ...PermissionConfig) gin.HandlerFunc {
	config := permissionConfig(cfg)

	return func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			handlePermissionDenied(c, config, []string{permission}, "")
			return
		}

		if !claims.HasPermission(permission) {
			handlePermissionDenied(c, config, []string{permission}, claims.Username)
			return
		}

		c.Next()
	}
}

// RequireAnyPermission returns a middleware that allows requests whose
// token carries at least one of the given permissions.
func RequireAnyPermission(permissions []string, cfg ...PermissionConfig) gin.HandlerFunc {
	config := permissionConfig(cfg)

	return func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			handlePermissionDenied(c, config, permissions, "")
			return
		}

		if !claims.HasAnyPermission(permissions...) {
			handlePermissionDenied(c, config, permissions, claims.Username)
			return
		}

		c.Next()
	}
}

// RequireAllPermissions returns a middleware that requires every one of
// the given permissions.
func RequireAllPermissions(permissions []string, cfg ...PermissionConfig) gin.HandlerFunc {
	config := permissionConfig(cfg)

	return func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			handlePermissionDenied(c, config, permissions, "")
			return
		}

		var missing []string
		for _, p := range permissions {
			if !claims.HasPermission(p) {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			handlePermissionDenied(c, config, missing, claims.Username)
			return
		}

		c.Next()
	}
}

func permissionConfig(cfg []PermissionConfig) PermissionConfig {
	if len(cfg) > 0 {
		config := cfg[0]
		if config.Logger == nil {
			config.Logger = zap.NewNop()
		}
		return config
	}
	return PermissionConfig{Logger: zap.NewNop()}
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, missing []string, username string) {
	cfg.Logger.Warn("permission denied",
		zap.String("path", c.Request.URL.Path),
		zap.String("username", username),
		zap.Strings("missing_permissions", missing))

	if cfg.OnDenied != nil {
		cfg.OnDenied(c, missing)
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "insufficient permissions", GetRequestID(c)))
}
