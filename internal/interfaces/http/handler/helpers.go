package handler

import (
	"github.com/gin-gonic/gin"
)

// operatorUsername returns the username of the authenticated operator,
// set by the JWT middleware. Empty when the route is unauthenticated.
func operatorUsername(c *gin.Context) string {
	return c.GetString("jwt_username")
}

// operatorHasPermission reports whether the authenticated operator's token
// carries the given permission.
func operatorHasPermission(c *gin.Context, permission string) bool {
	value, exists := c.Get("jwt_permissions")
	if !exists {
		return false
	}
	permissions, ok := value.([]string)
	if !ok {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
