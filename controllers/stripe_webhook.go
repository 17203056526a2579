package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	dbpkg "mibotpro/db"
	"mibotpro/lifecycle"

	"github.com/gin-gonic/gin"
)

// signatureTolerance bounds how old a signed timestamp may be. Anything
// beyond it looks like a replay and is rejected.
const signatureTolerance = 5 * time.Minute

// lifecycleStore serializes status updates per configuration id. It must be
// process-wide: Stripe retries deliveries concurrently and two handlers for
// the same configuration have to queue behind the same lock.
var lifecycleStore = lifecycle.NewStore()

func stripeWebhookSecret() string {
	secret := strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", ""))
	if secret == "" {
		secret = strings.TrimSpace(conf.Stripe.WebhookSecret)
	}
	return secret
}

// verifyStripeSignature validates the raw request body against the
// Stripe-Signature header: "t=<unix>,v1=<hex>", where v1 is
// HMAC-SHA256(secret, "<t>.<body>"). The body must be the exact bytes
// received; any reserialization breaks the check, which is the point.
func verifyStripeSignature(c *gin.Context, rawBody []byte, now time.Time) (bool, string) {
	secret := stripeWebhookSecret()
	if secret == "" {
		return false, "missing STRIPE_WEBHOOK_SECRET"
	}

	header := strings.TrimSpace(c.GetHeader("Stripe-Signature"))
	if header == "" {
		return false, "missing Stripe-Signature"
	}

	var timestamp string
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			if sig, err := hex.DecodeString(kv[1]); err == nil {
				signatures = append(signatures, sig)
			}
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return false, "invalid Stripe-Signature format"
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false, "invalid signature timestamp"
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return false, "signature timestamp outside tolerance"
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(rawBody)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			return true, ""
		}
	}
	return false, "signature mismatch"
}

// POST /api/payments/webhook
//
// The hard boundary: nothing past the signature check runs for a payload we
// cannot authenticate. Unknown event types and unknown correlation ids are
// acknowledged with 200 so the processor stops retrying them.
func StripeWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}

	if ok, reason := verifyStripeSignature(c, raw, time.Now()); !ok {
		RespondError(c, "webhook error: "+reason, http.StatusBadRequest)
		return
	}

	ev, ok := lifecycle.Interpret(raw)
	if !ok {
		c.String(http.StatusOK, "ignored")
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	outcome, err := lifecycleStore.Apply(db, ev)
	if err != nil {
		RespondError(c, "webhook processing error", http.StatusInternalServerError)
		return
	}

	if outcome.Unknown {
		c.String(http.StatusOK, "no-op")
		return
	}
	c.String(http.StatusOK, "processed")
}
