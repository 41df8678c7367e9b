// Package lifecycle derives a data room's effective status from its
// stored state and the current time. Evaluation is a pure function so
// the same inputs always produce the same answer regardless of host
// time zone: day boundaries are computed on UTC instant differences,
// never on calendar dates.
package lifecycle

import (
	"math"
	"time"

	"vaultroom/internal/models"
)

// DefaultExpiringWindowDays is the warning window before expiration
// during which a room reports EXPIRING.
const DefaultExpiringWindowDays = 7

// Evaluation is the result of evaluating a room at an instant.
// DaysUntilExpiration is nil for archived rooms and rooms without an
// expiration.
type Evaluation struct {
	Status              models.RoomStatus
	DaysUntilExpiration *int
}

// Evaluator computes effective room status. The zero value uses the
// default expiring window.
type Evaluator struct {
	// ExpiringWindowDays is the number of days before expiration at
	// which a room starts reporting EXPIRING.
	ExpiringWindowDays int
}

// NewEvaluator returns an Evaluator with the given warning window.
// Non-positive windows fall back to the default.
func NewEvaluator(expiringWindowDays int) *Evaluator {
	if expiringWindowDays <= 0 {
		expiringWindowDays = DefaultExpiringWindowDays
	}
	return &Evaluator{ExpiringWindowDays: expiringWindowDays}
}

// Evaluate returns the effective status of the room at the given instant.
//
// ARCHIVED is sticky: once a room carries the archived marker the
// expiration is irrelevant. EXPIRED is advisory only; it never blocks
// capabilities by itself (the permission evaluator only honors ARCHIVED
// as access-blocking).
func (e *Evaluator) Evaluate(room *models.DataRoom, now time.Time) Evaluation {
	if room.IsArchived() {
		return Evaluation{Status: models.RoomStatusArchived}
	}
	if room.ExpiresAt == nil {
		return Evaluation{Status: models.RoomStatusActive}
	}

	window := e.ExpiringWindowDays
	if window <= 0 {
		window = DefaultExpiringWindowDays
	}

	days := daysUntil(now, *room.ExpiresAt)
	switch {
	case days <= 0:
		return Evaluation{Status: models.RoomStatusExpired, DaysUntilExpiration: &days}
	case days <= window:
		return Evaluation{Status: models.RoomStatusExpiring, DaysUntilExpiration: &days}
	default:
		return Evaluation{Status: models.RoomStatusActive, DaysUntilExpiration: &days}
	}
}

// daysUntil returns ceil((expiresAt - now) / 24h) on UTC instants.
func daysUntil(now, expiresAt time.Time) int {
	delta := expiresAt.UTC().Sub(now.UTC())
	return int(math.Ceil(delta.Hours() / 24))
}
