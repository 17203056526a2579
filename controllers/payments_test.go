package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/require"

	dbpkg "mibotpro/db"
	"mibotpro/models"
	"mibotpro/tools"
)

type stubCheckoutCreator struct {
	session tools.CheckoutSession
	err     error
	params  tools.CheckoutSessionParams
	calls   int
}

func (s *stubCheckoutCreator) CreateCheckoutSession(_ context.Context, p tools.CheckoutSessionParams) (tools.CheckoutSession, error) {
	s.calls++
	s.params = p
	return s.session, s.err
}

func installStripeStub(t *testing.T, stub checkoutSessionCreator) {
	t.Helper()
	prev := newStripeClient
	newStripeClient = func() (checkoutSessionCreator, error) {
		if stub == nil {
			return nil, errors.New("STRIPE_API_KEY not set")
		}
		return stub, nil
	}
	t.Cleanup(func() { newStripeClient = prev })
}

func newPaymentsRouter(db *gorm.DB, user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	r.Use(func(c *gin.Context) {
		c.Set(ctxUserKey, user)
		c.Next()
	})
	r.POST("/api/payments/checkout-session", CreateCheckoutSession)
	return r
}

func seedCheckoutFixtures(t *testing.T, db *gorm.DB, status string) {
	t.Helper()
	template := models.BotTemplate{
		ID:         "tpl-hair",
		Title:      "Bot Peluquería",
		PriceCents: 2900,
		Currency:   "EUR",
		IsActive:   true,
	}
	require.NoError(t, db.Create(&template).Error)
	seedWebhookConfig(t, db, "cfg-1", status)
}

func postCheckout(r *gin.Engine, configID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/checkout-session",
		strings.NewReader(`{"config_id":"`+configID+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCheckoutSessionHappyPath(t *testing.T) {
	db := openControllerTestDB(t)
	seedCheckoutFixtures(t, db, models.CONFIG_STATUS_PENDING_PAYMENT)
	stub := &stubCheckoutCreator{session: tools.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}}
	installStripeStub(t, stub)

	w := postCheckout(newPaymentsRouter(db, models.User{ID: 1}), "cfg-1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "https://checkout.stripe.test/cs_1", resp["url"])
	require.Equal(t, "cs_1", resp["session_id"])

	require.Equal(t, 1, stub.calls)
	require.Equal(t, "cfg-1", stub.params.ConfigID)
	require.EqualValues(t, 2900, stub.params.AmountCents)
	require.Equal(t, "EUR", stub.params.Currency)

	// In flight until the processor reports the outcome.
	require.Equal(t, models.CONFIG_STATUS_PROCESSING, webhookConfigStatus(t, db, "cfg-1").Status)
}

func TestCreateCheckoutSessionRejectsActiveConfiguration(t *testing.T) {
	db := openControllerTestDB(t)
	seedCheckoutFixtures(t, db, models.CONFIG_STATUS_ACTIVE)
	stub := &stubCheckoutCreator{}
	installStripeStub(t, stub)

	w := postCheckout(newPaymentsRouter(db, models.User{ID: 1}), "cfg-1")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, stub.calls)
	require.Equal(t, models.CONFIG_STATUS_ACTIVE, webhookConfigStatus(t, db, "cfg-1").Status)
}

func TestCreateCheckoutSessionRejectsForeignConfiguration(t *testing.T) {
	db := openControllerTestDB(t)
	seedCheckoutFixtures(t, db, models.CONFIG_STATUS_PENDING_PAYMENT)
	installStripeStub(t, &stubCheckoutCreator{})

	w := postCheckout(newPaymentsRouter(db, models.User{ID: 99}), "cfg-1")

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCheckoutSessionProcessorFailureFlagsError(t *testing.T) {
	db := openControllerTestDB(t)
	seedCheckoutFixtures(t, db, models.CONFIG_STATUS_PENDING_PAYMENT)
	installStripeStub(t, &stubCheckoutCreator{err: errors.New("stripe error 500: internal")})

	w := postCheckout(newPaymentsRouter(db, models.User{ID: 1}), "cfg-1")

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, models.CONFIG_STATUS_ERROR, webhookConfigStatus(t, db, "cfg-1").Status)
}

func TestCreateCheckoutSessionProcessorNotConfigured(t *testing.T) {
	db := openControllerTestDB(t)
	seedCheckoutFixtures(t, db, models.CONFIG_STATUS_PENDING_PAYMENT)
	installStripeStub(t, nil)

	w := postCheckout(newPaymentsRouter(db, models.User{ID: 1}), "cfg-1")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// Status untouched: nothing was attempted against the processor.
	require.Equal(t, models.CONFIG_STATUS_PENDING_PAYMENT, webhookConfigStatus(t, db, "cfg-1").Status)
}

func TestSetCheckoutStatusNeverOverridesProcessorDecision(t *testing.T) {
	db := openControllerTestDB(t)
	seedCheckoutFixtures(t, db, models.CONFIG_STATUS_ACTIVE)

	require.NoError(t, setCheckoutStatus(db, "cfg-1", models.CONFIG_STATUS_ERROR))

	require.Equal(t, models.CONFIG_STATUS_ACTIVE, webhookConfigStatus(t, db, "cfg-1").Status)
}
