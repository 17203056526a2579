package controllers

import (
	"net/http"
	"time"

	dbpkg "mibotpro/db"
	"mibotpro/models"
	"mibotpro/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken        string `json:"access_token"`
	AccessExpiresAt    int64  `json:"access_expires_at"`     // unix seconds
	AccessExpiresAtISO string `json:"access_expires_at_iso"` // RFC3339
	RefreshToken       string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a new access+refresh pair.
// Security rules:
// - Only the hash of the token is stored, never the token itself
// - Rotation: using a token revokes previous ones and issues a new one
// - Single session: ALL active refresh tokens of the user are revoked
func Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		RespondError(c, "refresh_token is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	hash := tools.HashSHA512(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		RespondError(c, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	if stored.IsRevoked() || stored.IsExpired(now) {
		RespondError(c, "refresh token expired", http.StatusUnauthorized)
		return
	}

	if err := revokeAllUserRefreshTokens(db, stored.UserID, now); err != nil {
		RespondError(c, "failed to revoke previous sessions", http.StatusInternalServerError)
		return
	}

	secret := getJWTSecret()
	accessTTLMinutes := getenvInt("JWT_ACCESS_TTL_MINUTES", 24*60)
	accessExp := now.Add(time.Duration(accessTTLMinutes) * time.Minute)

	accessToken, err := signHS256JWT(secret, map[string]any{
		"sub": stored.UserID,
		"iat": now.Unix(),
		"exp": accessExp.Unix(),
	})
	if err != nil {
		RespondError(c, "failed to sign token", http.StatusInternalServerError)
		return
	}

	newRefresh, err := issueRefreshToken(db, stored.UserID, now)
	if err != nil {
		RespondError(c, "failed to issue refresh token", http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, RefreshResponse{
		AccessToken:        accessToken,
		AccessExpiresAt:    accessExp.Unix(),
		AccessExpiresAtISO: accessExp.UTC().Format(time.RFC3339),
		RefreshToken:       newRefresh,
	})
}

func revokeAllUserRefreshTokens(db *gorm.DB, userID int64, now time.Time) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now).Error
}

// issueRefreshToken creates a fresh token, persists its hash and returns the
// plain token to the caller. The plain token is never stored.
func issueRefreshToken(db *gorm.DB, userID int64, now time.Time) (string, error) {
	length := conf.Security.RefreshCodeLen
	if length <= 0 {
		length = 32
	}
	validDays := conf.Security.RefreshCodeMaxValid
	if validDays <= 0 {
		validDays = 30
	}

	token := tools.RandomToken(length)
	expires := now.Add(time.Duration(validDays) * 24 * time.Hour)

	rt := models.RefreshToken{
		UserID:    userID,
		TokenHash: tools.HashSHA512(token),
		ExpiresAt: &expires,
	}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}
