package lifecycle

import (
	"encoding/json"
	"log"
	"strings"
	"time"
)

// processorEvent is the minimal envelope shape we read from a Stripe event.
type processorEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// eventObject covers the fields we care about across checkout sessions,
// invoices and subscriptions.
type eventObject struct {
	ID            string            `json:"id"`
	Metadata      map[string]string `json:"metadata"`
	Subscription  string            `json:"subscription"`
	BillingReason string            `json:"billing_reason"`

	// Invoices carry the subscription metadata here, since the invoice's own
	// metadata bag belongs to the invoice, not to our configuration.
	SubscriptionDetails struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"subscription_details"`
}

// Interpret maps a verified raw processor payload to at most one lifecycle
// Event. It is a pure function of the payload: no outbound calls, no DB.
//
// Unhandled event types, renewals outside a subscription cycle and events
// whose metadata lacks a config_id all return ok=false. None of these are
// errors: the processor sends plenty of event types we never subscribed our
// logic to.
func Interpret(raw []byte) (Event, bool) {
	var env processorEvent
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("lifecycle: ignoring non-JSON event payload: %v", err)
		return Event{}, false
	}

	switch env.Type {
	case EVENT_CHECKOUT_COMPLETED,
		EVENT_INVOICE_PAYMENT_FAILED,
		EVENT_SUBSCRIPTION_DELETED,
		EVENT_INVOICE_PAYMENT_SUCCEEDED:
	default:
		return Event{}, false
	}

	var obj eventObject
	if len(env.Data.Object) > 0 {
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			log.Printf("lifecycle: event %s (%s): malformed data.object: %v", env.ID, env.Type, err)
			return Event{}, false
		}
	}

	// Renewal success is only meaningful on the recurring cycle. The first
	// invoice of a subscription also fires invoice.payment_succeeded, but
	// activation of that one belongs to checkout.session.completed.
	if env.Type == EVENT_INVOICE_PAYMENT_SUCCEEDED && obj.BillingReason != "subscription_cycle" {
		return Event{}, false
	}

	configID := correlationID(obj)
	if configID == "" {
		log.Printf("lifecycle: event %s (%s) has no config_id in metadata, dropping", env.ID, env.Type)
		return Event{}, false
	}

	return Event{
		Type:           env.Type,
		ConfigID:       configID,
		SubscriptionID: strings.TrimSpace(obj.Subscription),
		OccurredAt:     time.Unix(env.Created, 0),
	}, true
}

// correlationID digs the configuration id out of the event's metadata bag.
// The checkout flow sets metadata[config_id] on both the session and the
// subscription precisely so this extraction works for every event type.
func correlationID(obj eventObject) string {
	if id := strings.TrimSpace(obj.Metadata["config_id"]); id != "" {
		return id
	}
	return strings.TrimSpace(obj.SubscriptionDetails.Metadata["config_id"])
}
