package lifecycle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mibotpro/models"
)

func checkoutCompletedPayload(configID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_test_1",
			"subscription": "sub_123",
			"metadata": {"config_id": %q, "user_id": "7"}
		}}
	}`, configID))
}

func invoicePayload(eventType, billingReason, configID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"type": %q,
		"created": 1700000100,
		"data": {"object": {
			"id": "in_test_1",
			"subscription": "sub_123",
			"billing_reason": %q,
			"subscription_details": {"metadata": {"config_id": %q}}
		}}
	}`, eventType, billingReason, configID))
}

func TestInterpretCheckoutCompleted(t *testing.T) {
	ev, ok := Interpret(checkoutCompletedPayload("cfg-1"))
	require.True(t, ok)
	require.Equal(t, EVENT_CHECKOUT_COMPLETED, ev.Type)
	require.Equal(t, "cfg-1", ev.ConfigID)
	require.Equal(t, "sub_123", ev.SubscriptionID)

	target, ok := ev.TargetStatus()
	require.True(t, ok)
	require.Equal(t, models.CONFIG_STATUS_ACTIVE, target)
}

func TestInterpretInvoiceFailedUsesSubscriptionMetadata(t *testing.T) {
	ev, ok := Interpret(invoicePayload("invoice.payment_failed", "subscription_cycle", "cfg-9"))
	require.True(t, ok)
	require.Equal(t, "cfg-9", ev.ConfigID)

	target, _ := ev.TargetStatus()
	require.Equal(t, models.CONFIG_STATUS_SUSPENDED, target)
}

func TestInterpretRenewalOnlyOnSubscriptionCycle(t *testing.T) {
	_, ok := Interpret(invoicePayload("invoice.payment_succeeded", "subscription_create", "cfg-1"))
	require.False(t, ok, "first invoice of a subscription must not activate; checkout completion does")

	ev, ok := Interpret(invoicePayload("invoice.payment_succeeded", "subscription_cycle", "cfg-1"))
	require.True(t, ok)
	target, _ := ev.TargetStatus()
	require.Equal(t, models.CONFIG_STATUS_ACTIVE, target)
}

func TestInterpretDropsEventWithoutCorrelationID(t *testing.T) {
	payload := []byte(`{
		"id": "evt_3",
		"type": "customer.subscription.deleted",
		"created": 1700000200,
		"data": {"object": {"id": "sub_999", "metadata": {}}}
	}`)
	_, ok := Interpret(payload)
	require.False(t, ok)
}

func TestInterpretIgnoresUnhandledTypes(t *testing.T) {
	payload := []byte(`{
		"id": "evt_4",
		"type": "customer.created",
		"data": {"object": {"id": "cus_1", "metadata": {"config_id": "cfg-1"}}}
	}`)
	_, ok := Interpret(payload)
	require.False(t, ok)
}

func TestInterpretIgnoresGarbage(t *testing.T) {
	_, ok := Interpret([]byte("not json at all"))
	require.False(t, ok)
}
