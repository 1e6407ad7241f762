package services

import (
	"time"

	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// DefaultReleaseGrace is how long after an event's end date tagged items stay
// active before the sweep releases them.
const DefaultReleaseGrace = 48 * time.Hour

// ReleaseDeadline returns the instant at which items tagged to an event stop
// being "currently active" in it. The event end date is external
// configuration, not derived from item data.
func ReleaseDeadline(eventEnd time.Time, grace time.Duration) time.Time {
	return eventEnd.Add(grace)
}

// DueForRelease reports whether the sweep should untag item at now.
// Untagging an already-released item is a no-op, which keeps the sweep
// idempotent. The historical EverInConvention latch is unaffected either way.
func DueForRelease(item *models.Item, eventEnd time.Time, grace time.Duration, now time.Time) bool {
	if !item.InConvention {
		return false
	}
	return !now.Before(ReleaseDeadline(eventEnd, grace))
}
