package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	dbpkg "mibotpro/db"
	"mibotpro/models"
	"mibotpro/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type checkoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, p tools.CheckoutSessionParams) (tools.CheckoutSession, error)
}

// newStripeClient is a hook so tests can stub the payment processor.
var newStripeClient = func() (checkoutSessionCreator, error) {
	apiKey := getenv("STRIPE_API_KEY", conf.Stripe.ApiKey)
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("STRIPE_API_KEY not set")
	}
	return &tools.StripeClient{APIKey: apiKey}, nil
}

type CheckoutSessionRequest struct {
	ConfigID string `json:"config_id" form:"config_id"`
}

// POST /api/payments/checkout-session
//
// Opens a subscription checkout for one of the caller's configurations. The
// configuration moves to "processing" while the checkout is in flight;
// "active" is only ever set later by the processor's events, never here.
func CreateCheckoutSession(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ConfigID) == "" {
		RespondError(c, "config_id is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var config models.Configuration
	if err := db.Where("id = ? AND user_id = ?", req.ConfigID, user.ID).First(&config).Error; err != nil {
		RespondError(c, "configuration not found", http.StatusNotFound)
		return
	}

	if config.Status == models.CONFIG_STATUS_ACTIVE {
		RespondError(c, "configuration is already active", http.StatusBadRequest)
		return
	}

	var template models.BotTemplate
	if err := db.Where("id = ?", config.TemplateID).First(&template).Error; err != nil {
		RespondError(c, "bot template not found for this configuration", http.StatusBadRequest)
		return
	}
	if template.PriceCents <= 0 {
		RespondError(c, "bot template has no price configured", http.StatusBadRequest)
		return
	}

	stripe, err := newStripeClient()
	if err != nil {
		RespondError(c, "payment processor not configured", http.StatusInternalServerError)
		return
	}

	// Mark the checkout as in flight before calling out, mirroring the
	// dashboard flow: processing while the session lives, error when opening
	// it fails.
	if err := setCheckoutStatus(db, config.ID, models.CONFIG_STATUS_PROCESSING); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	frontendURL := strings.TrimRight(conf.FrontendURL, "/")
	session, err := stripe.CreateCheckoutSession(c.Request.Context(), tools.CheckoutSessionParams{
		ConfigID:           config.ID,
		UserID:             user.ID,
		ProductName:        template.Title,
		ProductDescription: "Suscripción mensual para el bot de " + config.BusinessName,
		AmountCents:        template.PriceCents,
		Currency:           template.Currency,
		SuccessURL:         frontendURL + "/#/dashboard?payment=success",
		CancelURL:          frontendURL + "/#/dashboard?payment=cancelled",
	})
	if err != nil {
		log.Printf("payments: checkout session for %s failed: %v", config.ID, err)
		if err := setCheckoutStatus(db, config.ID, models.CONFIG_STATUS_ERROR); err != nil {
			log.Printf("payments: failed to flag %s as error: %v", config.ID, err)
		}
		RespondError(c, "failed to create payment session", http.StatusBadGateway)
		return
	}

	RespondSuccess(c, gin.H{"url": session.URL, "session_id": session.ID})
}

// setCheckoutStatus writes the checkout-side statuses. It deliberately only
// moves between pending_payment, processing and error: if a racing processor
// event has just activated or suspended the configuration, the guarded WHERE
// leaves that decision alone.
func setCheckoutStatus(db *gorm.DB, configID string, status string) error {
	return db.Model(&models.Configuration{}).
		Where("id = ? AND status IN (?)", configID, []string{
			models.CONFIG_STATUS_PENDING_PAYMENT,
			models.CONFIG_STATUS_PROCESSING,
			models.CONFIG_STATUS_ERROR,
		}).
		Update("status", status).Error
}
