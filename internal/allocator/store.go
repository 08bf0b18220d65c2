package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Reservation is a short-lived claim on a not-yet-committed product code,
// shared across concurrent editing sessions.
type Reservation struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"ownerId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the reservation's TTL has elapsed
func (r *Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// ReservationStore is the shared reservation set. Implementations must
// guarantee that no two unexpired reservations for the same code belong to
// different owners.
type ReservationStore interface {
	// Acquire claims the code for ownerID with the given TTL. Re-acquiring
	// by the same owner refreshes the TTL. A live claim by a different
	// owner yields *CodeConflictError.
	Acquire(ctx context.Context, code, ownerID string, ttl time.Duration) error

	// Get returns the live reservation for the code, or nil if the code is
	// free or the prior claim has expired.
	Get(ctx context.Context, code string) (*Reservation, error)

	// Release drops ownerID's claim on the code. Releasing a code the
	// owner does not hold is a no-op.
	Release(ctx context.Context, code, ownerID string) error
}

// CodeConflictError is returned when a code is already reserved by another owner
type CodeConflictError struct {
	Code    string
	OwnerID string
}

func (e *CodeConflictError) Error() string {
	return fmt.Sprintf("code %s is reserved by another session", e.Code)
}

// ErrNoCodeAvailable is returned when the allocator exhausts its candidates
var ErrNoCodeAvailable = errors.New("no product code available")
