package lifecycle

import (
	"log"
	"sync"

	"mibotpro/models"

	"github.com/jinzhu/gorm"
)

// Outcome describes what applying an event did.
type Outcome struct {
	ConfigID string
	Status   string
	Changed  bool

	// Unknown is set when no configuration matches the event's correlation
	// id. That is a logged no-op, not an error: a hostile or stale event must
	// not crash the webhook path.
	Unknown bool
}

// Store applies lifecycle events to configurations, serializing updates per
// configuration id. The processor retries deliveries and does not guarantee
// ordering, so two events for the same configuration may race; the keyed
// mutex turns that into a sequence of idempotent writes.
//
// One Store instance must be shared by every webhook handler, otherwise the
// per-id locks serialize nothing.
type Store struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{locks: make(map[string]*sync.Mutex)}
}

func (s *Store) lockFor(configID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[configID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[configID] = l
	}
	return l
}

// Apply moves the event's configuration to the event's target status.
// Repeating the same event yields the same status (idempotent), and unknown
// correlation ids are no-ops.
func (s *Store) Apply(db *gorm.DB, ev Event) (Outcome, error) {
	target, ok := ev.TargetStatus()
	if !ok {
		// Interpret never emits these, but the store fails safe on its own.
		log.Printf("lifecycle: refusing to apply unmapped event type %q for %s", ev.Type, ev.ConfigID)
		return Outcome{ConfigID: ev.ConfigID}, nil
	}

	l := s.lockFor(ev.ConfigID)
	l.Lock()
	defer l.Unlock()

	var config models.Configuration
	if err := db.Where("id = ?", ev.ConfigID).First(&config).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			log.Printf("lifecycle: event %s for unknown configuration %s, ignoring", ev.Type, ev.ConfigID)
			return Outcome{ConfigID: ev.ConfigID, Unknown: true}, nil
		}
		return Outcome{}, err
	}

	updates := map[string]any{}
	if config.Status != target {
		updates["status"] = target
	}
	if ev.SubscriptionID != "" && config.StripeSubscriptionID != ev.SubscriptionID {
		updates["stripe_subscription_id"] = ev.SubscriptionID
	}

	if len(updates) == 0 {
		return Outcome{ConfigID: config.ID, Status: config.Status}, nil
	}

	if err := db.Model(&models.Configuration{}).
		Where("id = ?", config.ID).
		Updates(updates).Error; err != nil {
		return Outcome{}, err
	}

	changed := config.Status != target
	if changed {
		log.Printf("lifecycle: configuration %s: %s -> %s (%s, occurred_at=%s)",
			config.ID, config.Status, target, ev.Type, ev.OccurredAt.UTC().Format("2006-01-02T15:04:05Z"))
	}

	return Outcome{ConfigID: config.ID, Status: target, Changed: changed}, nil
}
