package router

import (
	"net/http"

	"mibotpro/controllers"
	"mibotpro/models"

	"github.com/gin-gonic/gin"
)

// Authorizer blocks access to protected routes when the user is not active.
func Authorizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}

		if user.Status == models.USER_STATUS_PENDING {
			controllers.RespondError(c, "account confirmation required", http.StatusForbidden)
			c.Abort()
			return
		}
		if user.Status == models.USER_STATUS_BLOCKED {
			controllers.RespondError(c, "no access to the application", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
