package middleware

import (
	"net/http"

	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Authorization struct{}

func NewAuthorization() *Authorization {
	return &Authorization{}
}

// AdminOnly must run after the bearer token middleware.
func (a *Authorization) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		user, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("auth user not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		if !user.IsAdmin() {
			log.Info("unauthorized access attempt to admin endpoint",
				zap.String("user_id", user.UserID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin access required"})
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
