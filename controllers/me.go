package controllers

import (
	"net/http"

	dbpkg "mibotpro/db"
	"mibotpro/models"

	"github.com/gin-gonic/gin"
)

// GET /api/me
//
// Returns the logged-in owner plus a per-status breakdown of their bots,
// which is what the dashboard home screen renders.
func Me(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	user.Password = ""

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
		Where("user_id = ?", user.ID).
		Group("status").
		Scan(&counts).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"user": user, "configurations_by_status": counts})
}
