package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rishmeh/bhookh/internal/freshness"
	"github.com/rishmeh/bhookh/pkg/logger"
)

// DonationPurger is the slice of the donation repository the janitor needs.
type DonationPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpiryJanitor physically deletes donations past the retention horizon. It
// is redundant with the store's TTL index on purpose: both deletion paths are
// idempotent, so they race harmlessly to the same end state, and the sweep
// covers TTL propagation delay.
type ExpiryJanitor struct {
	store DonationPurger
	now   func() time.Time
}

// NewExpiryJanitor creates a new instance of ExpiryJanitor.
func NewExpiryJanitor(store DonationPurger) *ExpiryJanitor {
	return &ExpiryJanitor{
		store: store,
		now:   time.Now,
	}
}

// RunSweep deletes every donation older than the retention window. A failed
// sweep is reported to the caller for logging; the next tick retries.
func (j *ExpiryJanitor) RunSweep(ctx context.Context) error {
	cutoff := j.now().Add(-freshness.ActiveWindow)

	deleted, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("expiry sweep: %v", err)
	}

	if deleted > 0 {
		logger.Log.WithField("deleted", deleted).Info("Expired donations swept")
	}
	return nil
}
