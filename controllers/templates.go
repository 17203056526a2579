package controllers

import (
	"net/http"
	"strings"

	dbpkg "mibotpro/db"
	"mibotpro/models"

	"github.com/gin-gonic/gin"
)

// GET /api/templates
func GetBotTemplates(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var templates []models.BotTemplate
	if err := db.Where("is_active = ?", true).Order("id asc").Find(&templates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"templates": templates})
}

// GET /api/templates/:id
func GetBotTemplateByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		RespondError(c, "id is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var template models.BotTemplate
	if err := db.Where("id = ?", id).First(&template).Error; err != nil {
		RespondError(c, "bot template not found", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"template": template})
}

// POST /api/templates (admin)
func CreateBotTemplate(c *gin.Context) {
	var template models.BotTemplate
	if err := c.Bind(&template); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if template.ID == "" {
		RespondError(c, "id is required", http.StatusBadRequest)
		return
	}
	if template.Title == "" {
		RespondError(c, "title is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	if err := db.Create(&template).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"template": template})
}

// PUT /api/templates/:id (admin)
func UpdateBotTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		RespondError(c, "id is required", http.StatusBadRequest)
		return
	}

	var body models.BotTemplate
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var template models.BotTemplate
	if err := db.Where("id = ?", id).First(&template).Error; err != nil {
		RespondError(c, "bot template not found", http.StatusNotFound)
		return
	}

	if body.Title != "" {
		template.Title = body.Title
	}
	template.Description = body.Description
	if body.PriceCents >= 0 {
		template.PriceCents = body.PriceCents
	}
	if body.Currency != "" {
		template.Currency = body.Currency
	}
	template.IsActive = body.IsActive

	if err := db.Save(&template).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"template": template})
}

// DELETE /api/templates/:id (admin)
func DeleteBotTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		RespondError(c, "id is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	if err := db.Where("id = ?", id).Delete(&models.BotTemplate{}).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"deleted": id})
}
