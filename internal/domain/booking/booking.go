package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pawnest/service-marketplace/internal/domain"
)

// cancellationCutoff is the minimum lead time before the start date for a
// booking to still be cancellable.
const cancellationCutoff = 24 * time.Hour

// fullRefundCutoff is the lead time above which a cancellation refunds the
// whole total; between the two cutoffs half the total is refunded.
const fullRefundCutoff = 48 * time.Hour

// SlotUnavailableMessage is the conflict message raised when a requested
// interval overlaps a blocking booking for the same sitter.
const SlotUnavailableMessage = "the requested time slot is no longer available for this sitter"

// CheckRecord captures a check-in or check-out event with its evidence.
type CheckRecord struct {
	Time   time.Time `json:"time"`
	Notes  string    `json:"notes,omitempty"`
	Photos []string  `json:"photos,omitempty"`
}

// UpdateEntry is one progress update posted by the sitter during a stay.
type UpdateEntry struct {
	Author    uuid.UUID `json:"author"`
	Message   string    `json:"message"`
	Photos    []string  `json:"photos,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CancellationRecord captures who cancelled a booking, when, why, and the
// refund that was granted.
type CancellationRecord struct {
	CancelledBy  uuid.UUID       `json:"cancelled_by"`
	CancelledAt  time.Time       `json:"cancelled_at"`
	Reason       string          `json:"reason,omitempty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// Booking is the aggregate root linking an owner, a sitter, a listing and a
// pet into a time-bounded reservation.
type Booking struct {
	id               uuid.UUID
	ownerID          uuid.UUID
	sitterID         uuid.UUID
	listingID        uuid.UUID
	petID            uuid.UUID
	startDate        time.Time
	endDate          time.Time
	status           Status
	basePrice        decimal.Decimal
	serviceFee       decimal.Decimal
	totalPrice       decimal.Decimal
	notes            string
	emergencyContact string
	checkIn          *CheckRecord
	checkOut         *CheckRecord
	updates          []UpdateEntry
	cancellation     *CancellationRecord
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewBooking creates a booking for an already-priced reservation. The sitter is
// denormalized from the listing at creation and never changes afterwards. The
// initial status is confirmed when the listing allows instant booking,
// otherwise pending.
func NewBooking(
	ownerID, sitterID, listingID, petID uuid.UUID,
	startDate, endDate time.Time,
	quote Quote,
	notes, emergencyContact string,
	instantBooking bool,
) (*Booking, error) {
	if ownerID == uuid.Nil || sitterID == uuid.Nil || listingID == uuid.Nil || petID == uuid.Nil {
		return nil, domain.NewValidationError("owner, sitter, listing and pet are required")
	}
	if !endDate.After(startDate) {
		return nil, domain.NewValidationError("end date must be after start date")
	}
	if startDate.Before(time.Now().UTC()) {
		return nil, domain.NewValidationError("start date cannot be in the past")
	}

	status := StatusPending
	if instantBooking {
		status = StatusConfirmed
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		ownerID:          ownerID,
		sitterID:         sitterID,
		listingID:        listingID,
		petID:            petID,
		startDate:        startDate,
		endDate:          endDate,
		status:           status,
		basePrice:        quote.BasePrice,
		serviceFee:       quote.ServiceFee,
		totalPrice:       quote.Total,
		notes:            notes,
		emergencyContact: emergencyContact,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, ownerID, sitterID, listingID, petID uuid.UUID,
	startDate, endDate time.Time,
	status Status,
	basePrice, serviceFee, totalPrice decimal.Decimal,
	notes, emergencyContact string,
	checkIn, checkOut *CheckRecord,
	updates []UpdateEntry,
	cancellation *CancellationRecord,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		ownerID:          ownerID,
		sitterID:         sitterID,
		listingID:        listingID,
		petID:            petID,
		startDate:        startDate,
		endDate:          endDate,
		status:           status,
		basePrice:        basePrice,
		serviceFee:       serviceFee,
		totalPrice:       totalPrice,
		notes:            notes,
		emergencyContact: emergencyContact,
		checkIn:          checkIn,
		checkOut:         checkOut,
		updates:          updates,
		cancellation:     cancellation,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID                     { return b.id }
func (b *Booking) OwnerID() uuid.UUID                { return b.ownerID }
func (b *Booking) SitterID() uuid.UUID               { return b.sitterID }
func (b *Booking) ListingID() uuid.UUID              { return b.listingID }
func (b *Booking) PetID() uuid.UUID                  { return b.petID }
func (b *Booking) StartDate() time.Time              { return b.startDate }
func (b *Booking) EndDate() time.Time                { return b.endDate }
func (b *Booking) Status() Status                    { return b.status }
func (b *Booking) BasePrice() decimal.Decimal        { return b.basePrice }
func (b *Booking) ServiceFee() decimal.Decimal       { return b.serviceFee }
func (b *Booking) TotalPrice() decimal.Decimal       { return b.totalPrice }
func (b *Booking) Notes() string                     { return b.notes }
func (b *Booking) EmergencyContact() string          { return b.emergencyContact }
func (b *Booking) CheckIn() *CheckRecord             { return b.checkIn }
func (b *Booking) CheckOut() *CheckRecord            { return b.checkOut }
func (b *Booking) Updates() []UpdateEntry            { return b.updates }
func (b *Booking) Cancellation() *CancellationRecord { return b.cancellation }
func (b *Booking) Version() int64                    { return b.version }
func (b *Booking) CreatedAt() time.Time              { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time              { return b.updatedAt }

// IsOwnedBy checks if the booking was placed by the given owner.
func (b *Booking) IsOwnedBy(ownerID uuid.UUID) bool {
	return b.ownerID == ownerID
}

// IsAssignedTo checks if the booking belongs to the given sitter's calendar.
func (b *Booking) IsAssignedTo(sitterID uuid.UUID) bool {
	return b.sitterID == sitterID
}

// Overlaps reports whether the booking's interval intersects [start, end].
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.startDate.After(end) && !b.endDate.Before(start)
}

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.touch()
	return nil
}

// Decline transitions the booking from pending to declined.
func (b *Booking) Decline() error {
	if !b.status.CanTransitionTo(StatusDeclined) {
		return domain.NewInvalidStateError(string(b.status), string(StatusDeclined))
	}
	b.status = StatusDeclined
	b.touch()
	return nil
}

// Start transitions the booking from confirmed to in_progress without a
// check-in record (used when the sitter drives the status directly).
func (b *Booking) Start() error {
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewInvalidStateError(string(b.status), string(StatusInProgress))
	}
	b.status = StatusInProgress
	b.touch()
	return nil
}

// Complete transitions the booking from in_progress to completed without a
// check-out record.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.touch()
	return nil
}

// AppendNote joins a free-text note onto the booking's notes. Empty notes are
// ignored.
func (b *Booking) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if b.notes == "" {
		b.notes = note
	} else {
		b.notes = b.notes + "\n" + note
	}
	b.touch()
}

// HoursUntilStart returns how many hours remain before the booking starts.
// Negative once the start date has passed.
func (b *Booking) HoursUntilStart(now time.Time) float64 {
	return b.startDate.Sub(now).Hours()
}

// CanBeCancelled reports whether the booking may still be cancelled at the
// given time: never from completed or cancelled, and only with more than 24
// hours of lead time.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	if b.status == StatusCompleted || b.status == StatusCancelled {
		return false
	}
	return b.startDate.Sub(now) > cancellationCutoff
}

// CalculateRefund returns the refund owed for a cancellation at the given
// time: the full total above 48 hours of lead time, half between 24 and 48,
// and nothing below that.
func (b *Booking) CalculateRefund(now time.Time) decimal.Decimal {
	lead := b.startDate.Sub(now)
	switch {
	case lead > fullRefundCutoff:
		return b.totalPrice
	case lead > cancellationCutoff:
		return b.totalPrice.Div(decimal.NewFromInt(2))
	default:
		return decimal.Zero
	}
}

// Cancel cancels the booking, recording who did it, why, and the refund
// computed for the moment of cancellation. Cancellation is rejected outright
// inside the 24-hour window, not merely zero-refunded.
func (b *Booking) Cancel(by uuid.UUID, reason string, now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	if !b.CanBeCancelled(now) {
		return domain.NewValidationError("bookings can only be cancelled more than 24 hours before the start date")
	}

	b.cancellation = &CancellationRecord{
		CancelledBy:  by,
		CancelledAt:  now,
		Reason:       reason,
		RefundAmount: b.CalculateRefund(now),
	}
	b.status = StatusCancelled
	b.touch()
	return nil
}

// RecordCheckIn marks the sitter's arrival, moving the booking to in_progress.
// A booking can only be checked in once.
func (b *Booking) RecordCheckIn(notes string, photos []string, now time.Time) error {
	if b.checkIn != nil {
		return domain.NewValidationError("booking is already checked in")
	}
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewInvalidStateError(string(b.status), string(StatusInProgress))
	}
	b.checkIn = &CheckRecord{Time: now, Notes: notes, Photos: photos}
	b.status = StatusInProgress
	b.touch()
	return nil
}

// RecordCheckOut marks the end of the stay, moving the booking to completed.
// Requires a prior check-in and can only happen once.
func (b *Booking) RecordCheckOut(notes string, photos []string, now time.Time) error {
	if b.checkIn == nil {
		return domain.NewValidationError("booking has not been checked in")
	}
	if b.checkOut != nil {
		return domain.NewValidationError("booking is already checked out")
	}
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.checkOut = &CheckRecord{Time: now, Notes: notes, Photos: photos}
	b.status = StatusCompleted
	b.touch()
	return nil
}

// AddUpdate appends a progress update. Updates are only accepted while the
// stay is in progress; terminal bookings never accept further notes.
func (b *Booking) AddUpdate(author uuid.UUID, message string, photos []string, now time.Time) error {
	if message == "" {
		return domain.NewValidationError("update message is required")
	}
	if b.status != StatusInProgress {
		return domain.NewValidationError("updates can only be posted while the booking is in progress")
	}
	b.updates = append(b.updates, UpdateEntry{
		Author:    author,
		Message:   message,
		Photos:    photos,
		CreatedAt: now,
	})
	b.touch()
	return nil
}

func (b *Booking) touch() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
