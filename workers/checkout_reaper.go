package workers

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mibotpro/models"

	"github.com/jinzhu/gorm"
)

const defaultStaleCheckoutHours = 24

// StartCheckoutReaper starts a loop that returns configurations stuck in
// "processing" to "pending_payment". A checkout session that was opened but
// never completed leaves the configuration in processing forever otherwise;
// Stripe only sends events for sessions that finish.
func StartCheckoutReaper(db *gorm.DB) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			ReapStaleCheckouts(db, time.Now())
		}
	}()
}

// ReapStaleCheckouts performs one pass. The guarded WHERE makes it safe
// against a concurrent activation: a configuration that just went active is
// no longer "processing" and stays untouched.
func ReapStaleCheckouts(db *gorm.DB, now time.Time) {
	cutoff := now.Add(-staleCheckoutWindow())

	res := db.Model(&models.Configuration{}).
		Where("status = ? AND updated_at <= ?", models.CONFIG_STATUS_PROCESSING, cutoff).
		Update("status", models.CONFIG_STATUS_PENDING_PAYMENT)
	if res.Error != nil {
		log.Printf("checkout reaper: update error: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("checkout reaper: returned %d stale checkout(s) to pending_payment", res.RowsAffected)
	}
}

func staleCheckoutWindow() time.Duration {
	if v := strings.TrimSpace(os.Getenv("STALE_CHECKOUT_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return defaultStaleCheckoutHours * time.Hour
}
