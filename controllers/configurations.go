package controllers

import (
	"net/http"
	"strings"

	dbpkg "mibotpro/db"
	"mibotpro/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// newConfigID is a hook so tests can pin ids.
var newConfigID = func() string {
	return uuid.NewString()
}

// loadOwnedConfiguration fetches a configuration by path param and checks
// ownership. Responds on failure.
func loadOwnedConfiguration(c *gin.Context) (*models.Configuration, bool) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		RespondError(c, "id is required", http.StatusBadRequest)
		return nil, false
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return nil, false
	}

	var config models.Configuration
	if err := db.Where("id = ?", id).First(&config).Error; err != nil {
		RespondError(c, "configuration not found", http.StatusNotFound)
		return nil, false
	}
	if config.UserID != user.ID {
		RespondError(c, "not authorized for this configuration", http.StatusForbidden)
		return nil, false
	}
	return &config, true
}

// GET /api/configurations
func GetConfigurations(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var configs []models.Configuration
	if err := db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&configs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"configurations": configs})
}

// GET /api/configurations/:id
func GetConfigurationByID(c *gin.Context) {
	config, ok := loadOwnedConfiguration(c)
	if !ok {
		return
	}
	RespondSuccess(c, gin.H{"configuration": config})
}

// POST /api/configurations
//
// New configurations always start in pending_payment. Status is never
// accepted from the client: activation only happens through payment events.
func CreateConfiguration(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var config models.Configuration
	if err := c.Bind(&config); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	missing := config.MissingFields()
	if missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}

	var template models.BotTemplate
	if err := db.Where("id = ?", config.TemplateID).First(&template).Error; err != nil {
		RespondError(c, "bot template not found", http.StatusBadRequest)
		return
	}
	if !template.IsActive {
		RespondError(c, "bot template is not available", http.StatusBadRequest)
		return
	}

	config.ID = newConfigID()
	config.UserID = user.ID
	config.TemplateTitle = template.Title
	config.Status = models.CONFIG_STATUS_PENDING_PAYMENT
	config.StripeSubscriptionID = ""

	if err := db.Create(&config).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"configuration": config})
}

// PUT /api/configurations/:id
//
// Only the business profile is mutable here. Lifecycle status is owned by
// the payment event path and must never be written from a client payload.
func UpdateConfiguration(c *gin.Context) {
	config, ok := loadOwnedConfiguration(c)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)

	var body models.Configuration
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	updates := map[string]any{
		"business_name":       body.BusinessName,
		"phone":               body.Phone,
		"email":               body.Email,
		"hours":               body.Hours,
		"services":            body.Services,
		"automation_endpoint": body.AutomationEndpoint,
		"booking_page_url":    body.BookingPageURL,
		"system_prompt":       body.SystemPrompt,
	}
	if body.BusinessName == "" {
		delete(updates, "business_name")
	}

	if err := db.Model(&models.Configuration{}).
		Where("id = ?", config.ID).
		Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var updated models.Configuration
	if err := db.Where("id = ?", config.ID).First(&updated).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"configuration": updated})
}

// DELETE /api/configurations/:id
//
// The owner may delete at any time regardless of status. Cancelling the
// underlying subscription is handled on the processor side; its
// customer.subscription.deleted event then becomes a no-op here.
func DeleteConfiguration(c *gin.Context) {
	config, ok := loadOwnedConfiguration(c)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if err := db.Where("id = ?", config.ID).Delete(&models.Configuration{}).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	c.Status(http.StatusNoContent)
}
