package lifecycle

import (
	"time"

	"mibotpro/models"
)

/************************************************
/**** MARK: PROCESSOR EVENT TYPES ****/
/************************************************/
const EVENT_CHECKOUT_COMPLETED = "checkout.session.completed"
const EVENT_INVOICE_PAYMENT_FAILED = "invoice.payment_failed"
const EVENT_SUBSCRIPTION_DELETED = "customer.subscription.deleted"
const EVENT_INVOICE_PAYMENT_SUCCEEDED = "invoice.payment_succeeded"

// Event is a verified, already-interpreted payment processor notification.
// It is transient: consumed once by the store, never persisted.
type Event struct {
	Type     string
	ConfigID string

	// SubscriptionID is the processor's own subscription object id, kept for
	// support and reconciliation. Correlation never relies on it.
	SubscriptionID string

	// OccurredAt is processor-supplied, used for logging only. Conflict
	// resolution never reads it: the transition table is monotonic per event
	// type, so ordering does not matter.
	OccurredAt time.Time
}

// TargetStatus maps an event type to the status it forces. The mapping
// depends on the event type alone, never on the prior status, which makes
// processor retries and out-of-order deliveries trivially safe to replay.
func (e Event) TargetStatus() (string, bool) {
	switch e.Type {
	case EVENT_CHECKOUT_COMPLETED, EVENT_INVOICE_PAYMENT_SUCCEEDED:
		return models.CONFIG_STATUS_ACTIVE, true
	case EVENT_INVOICE_PAYMENT_FAILED, EVENT_SUBSCRIPTION_DELETED:
		return models.CONFIG_STATUS_SUSPENDED, true
	}
	return "", false
}
