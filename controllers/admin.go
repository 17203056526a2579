package controllers

import (
	"net/http"

	dbpkg "mibotpro/db"
	"mibotpro/models"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/configurations (admin)
func GetAllConfigurations(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var configs []models.Configuration
	if err := db.Order("created_at desc").Find(&configs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"configurations": configs})
}

// GET /api/admin/stats (admin)
//
// Counts per lifecycle status plus an MRR estimate: sum of template prices
// over configurations currently paying (active or in checkout).
func GetAdminStats(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var counts []statusCount
	if err := db.Model(&models.Configuration{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var revenueCents int64
	row := db.Table("configurations").
		Select("coalesce(sum(bot_templates.price_cents), 0)").
		Joins("join bot_templates on bot_templates.id = configurations.template_id").
		Where("configurations.status IN (?)", []string{
			models.CONFIG_STATUS_ACTIVE,
			models.CONFIG_STATUS_PROCESSING,
		}).
		Row()
	if err := row.Scan(&revenueCents); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"status_counts":         counts,
		"users":                 users,
		"monthly_revenue_cents": revenueCents,
	})
}
