package controllers

import (
	"mibotpro/config"

	"github.com/gin-gonic/gin"
)

var conf config.Configuration

// SetConfigurations hands controllers the loaded app configuration. Secrets
// may still be overridden via env, the same way db.SetConfigurations works.
func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}
