package controllers

import (
	"net/http"

	dbpkg "mibotpro/db"
	"mibotpro/models"
	"mibotpro/tools"

	"github.com/gin-gonic/gin"
)

func CheckUserExists(c *gin.Context, email string) (bool, *models.User) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		return false, nil
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return false, nil
	}
	return true, &user
}

func CreateUser(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	user := models.User{}
	if err := c.Bind(&user); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	missing := user.MissingFields()
	if missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}

	if !tools.ValidateEmail(user.Email) {
		RespondError(c, "invalid email", http.StatusBadRequest)
		return
	}

	exists, _ := CheckUserExists(c, user.Email)
	if exists {
		RespondError(c, "user already exists", http.StatusBadRequest)
		return
	}

	passwordEncode := tools.HashSHA512(user.Password)
	passwordEncode = user.Email + ":" + passwordEncode
	passwordEncode = tools.HashSHA512(passwordEncode)
	user.Password = passwordEncode

	user.Admin = false
	user.Status = models.USER_STATUS_AVAILABLE

	if err := db.Create(&user).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	user.Password = ""
	RespondSuccess(c, user)
}
