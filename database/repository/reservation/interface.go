package reservationRepo

import (
	"context"
	"time"

	"salonbook/models"
)

// AvailabilityReader exposes the current commitments the availability
// computation subtracts. The commit transaction re-reads through the same
// interface bound to its session, so revalidation observes a state at least
// as fresh as any finished commit.
type AvailabilityReader interface {
	// StaffReservations returns active reservations assigned to the staff
	// member that overlap [from, to).
	StaffReservations(ctx context.Context, staffID string, from, to time.Time) ([]models.Reservation, error)
	// ResourceAllocations returns allocation lines of active reservations
	// overlapping [from, to), for the given resources.
	ResourceAllocations(ctx context.Context, resourceIDs []string, from, to time.Time) ([]models.CapacityAllocation, error)
	// Leaves returns declared absences overlapping [from, to) for the given
	// providers.
	Leaves(ctx context.Context, providerIDs []string, from, to time.Time) ([]models.Leave, error)
}

// RevalidateFunc re-checks availability inside the commit transaction using
// a session-bound reader, and returns the capacity allocation lines to
// persist (nil for staff-based bookings). A booking.ConflictError return
// aborts the transaction.
type RevalidateFunc func(ctx context.Context, reader AvailabilityReader) ([]models.CapacityAllocation, error)

// CommitRequest is one atomic booking commit: the reservation, the customer
// identity to create when no existing one matched, and the revalidation
// step. Nothing is persisted if any part fails.
type CommitRequest struct {
	Reservation *models.Reservation
	NewCustomer *models.Customer
	Revalidate  RevalidateFunc
}

// ReservationRepository persists reservations and their allocation lines.
type ReservationRepository interface {
	AvailabilityReader

	// Commit runs req.Revalidate and, on success, persists the customer (if
	// new), the reservation and its allocation lines as one transaction.
	//
	// Implementations must guarantee that of two overlapping commits
	// consuming the same provider at most one succeeds: revalidation and the
	// writes have to be serialized through a shared conflict point so the
	// loser re-observes the winner's state and returns a ConflictError. The
	// mongo implementation bumps a per-provider version document inside the
	// transaction for this; in-memory test doubles serialize Commit on a
	// mutex.
	Commit(ctx context.Context, req CommitRequest) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// SetDepositRef records the follow-on deposit payment reference on an
	// already committed reservation.
	SetDepositRef(ctx context.Context, id, ref string) error
	// Cancel flips the reservation to cancelled. Allocation lines are
	// immutable history; cancelled reservations simply stop counting.
	Cancel(ctx context.Context, id string) error
}
