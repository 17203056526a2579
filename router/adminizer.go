package router

import (
	"net/http"

	"mibotpro/controllers"

	"github.com/gin-gonic/gin"
)

// Adminizer guards the catalog management and platform dashboard routes.
// Runs after AuthRequired, so a missing user here means a wiring mistake.
func Adminizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if !user.Admin {
			controllers.RespondError(c, "administrator access required", http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
