package router

import (
	"log"

	"mibotpro/config"
	"mibotpro/controllers"
	"mibotpro/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares: public routes, the payment
// processor webhook, authenticated routes and "validated" routes
// (Authorizer), with an admin group on top.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	_ = cfg

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")

	// Payment processor webhook (Stripe). Raw body + signature header; no
	// auth middleware, the signature IS the authentication.
	api.POST("/payments/webhook", controllers.StripeWebhook)

	// Public (no auth)
	api.POST("/users", Logger(), controllers.CreateUser)
	api.POST("/login", Logger(), controllers.Login)
	api.POST("/refresh", Logger(), controllers.Refresh)

	// Authenticated routes (token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())
	auth.GET("/me", Logger(), controllers.Me)
	auth.PUT("/user", Logger(), controllers.UpdateCurrentUser)

	// Validated routes (token + active user)
	validated := auth.Group("")
	validated.Use(Authorizer())

	// Bot template catalog
	validated.GET("/templates", Logger(), controllers.GetBotTemplates)
	validated.GET("/templates/:id", Logger(), controllers.GetBotTemplateByID)

	// Configurations (owner-scoped)
	validated.GET("/configurations", Logger(), controllers.GetConfigurations)
	validated.POST("/configurations", Logger(), controllers.CreateConfiguration)
	validated.GET("/configurations/:id", Logger(), controllers.GetConfigurationByID)
	validated.PUT("/configurations/:id", Logger(), controllers.UpdateConfiguration)
	validated.DELETE("/configurations/:id", Logger(), controllers.DeleteConfiguration)

	// Bot execution (one conversation turn)
	validated.POST("/configurations/:id/run", Logger(), controllers.RunBot)

	// Payments
	validated.POST("/payments/checkout-session", Logger(), controllers.CreateCheckoutSession)

	// Admin routes
	admin := validated.Group("")
	admin.Use(Adminizer())

	// Bot templates CRUD (admin)
	admin.POST("/templates", Logger(), controllers.CreateBotTemplate)
	admin.PUT("/templates/:id", Logger(), controllers.UpdateBotTemplate)
	admin.DELETE("/templates/:id", Logger(), controllers.DeleteBotTemplate)

	// Dashboard (admin)
	admin.GET("/admin/configurations", Logger(), controllers.GetAllConfigurations)
	admin.GET("/admin/stats", Logger(), controllers.GetAdminStats)

	log.Printf("Routes initialized")
}
