package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/gin-gonic/gin"
)

// Role groups used by the dashboards
var (
	KitchenRoles = []string{models.RoleKitchen, models.RoleManager, models.RoleAdmin}
	ManagerRoles = []string{models.RoleManager, models.RoleAdmin}
	AdminRoles   = []string{models.RoleAdmin}
)

// RequireRole is a middleware that checks if the user has one of the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// set by StaffAuth or StaffPage
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		userRole := c.GetString(ContextUserRole)
		for _, role := range allowed {
			if role == userRole {
				c.Next()
				return
			}
		}

		if c.GetBool(contextPage) {
			c.String(http.StatusForbidden, "You do not have access to this page.")
			c.Abort()
			return
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error":         "Insufficient permissions",
			"allowed_roles": allowed,
			"user_role":     userRole,
			"user_id":       userID,
		})
		c.Abort()
	}
}
