package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a booking list query.
type ListFilter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByOwnerID retrieves bookings placed by an owner, filtered and paginated.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// FindBySitterID retrieves bookings on a sitter's calendar, filtered and paginated.
	FindBySitterID(ctx context.Context, sitterID uuid.UUID, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountOverlapping counts the sitter's blocking-status bookings whose
	// interval intersects [start, end].
	CountOverlapping(ctx context.Context, sitterID uuid.UUID, start, end time.Time) (int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
