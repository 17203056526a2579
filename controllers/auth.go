package controllers

import (
	"net/http"
	"time"

	dbpkg "mibotpro/db"
	"mibotpro/models"
	"mibotpro/tools"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(c, "email and password are required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		RespondError(c, "invalid email or password", http.StatusUnauthorized)
		return
	}

	// Same hashing scheme used by CreateUser.
	passwordEncode := tools.HashSHA512(req.Password)
	passwordEncode = user.Email + ":" + passwordEncode
	passwordEncode = tools.HashSHA512(passwordEncode)
	if user.Password != passwordEncode {
		RespondError(c, "invalid email or password", http.StatusUnauthorized)
		return
	}

	if user.Status == models.USER_STATUS_BLOCKED {
		RespondError(c, "account blocked", http.StatusForbidden)
		return
	}

	now := time.Now()
	signed, err := signHS256JWT(getJWTSecret(), map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		RespondError(c, "failed to sign token", http.StatusInternalServerError)
		return
	}

	refresh, err := issueRefreshToken(db, user.ID, now)
	if err != nil {
		RespondError(c, "failed to issue refresh token", http.StatusInternalServerError)
		return
	}

	user.Password = ""
	RespondSuccess(c, LoginResponse{Token: signed, RefreshToken: refresh, User: user})
}
