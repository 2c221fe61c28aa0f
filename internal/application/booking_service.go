package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/booking"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
)

// CreateBookingRequest carries the data needed to place a reservation.
type CreateBookingRequest struct {
	ServiceID        uuid.UUID `json:"service_id" binding:"required"`
	PetID            uuid.UUID `json:"pet_id" binding:"required"`
	StartDate        time.Time `json:"start_date" binding:"required"`
	EndDate          time.Time `json:"end_date" binding:"required"`
	Notes            string    `json:"notes"`
	EmergencyContact string    `json:"emergency_contact"`
}

// ChangeStatusRequest asks for a status transition on a booking. Notes become
// the cancellation reason on owner cancellations and are appended to the
// booking's notes on sitter transitions.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CheckRequest carries the notes and photo URLs of a check-in or check-out.
type CheckRequest struct {
	Notes  string
	Photos []string
}

// AddUpdateRequest carries a progress update posted by the sitter.
type AddUpdateRequest struct {
	Message string
	Photos  []string
}

// BookingDTO is the outward representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID                    `json:"id"`
	OwnerID          uuid.UUID                    `json:"owner_id"`
	SitterID         uuid.UUID                    `json:"sitter_id"`
	ServiceID        uuid.UUID                    `json:"service_id"`
	PetID            uuid.UUID                    `json:"pet_id"`
	StartDate        time.Time                    `json:"start_date"`
	EndDate          time.Time                    `json:"end_date"`
	Status           string                       `json:"status"`
	BasePrice        decimal.Decimal              `json:"base_price"`
	ServiceFee       decimal.Decimal              `json:"service_fee"`
	TotalPrice       decimal.Decimal              `json:"total_price"`
	Notes            string                       `json:"notes,omitempty"`
	EmergencyContact string                       `json:"emergency_contact,omitempty"`
	CheckIn          *booking.CheckRecord         `json:"check_in,omitempty"`
	CheckOut         *booking.CheckRecord         `json:"check_out,omitempty"`
	Updates          []booking.UpdateEntry        `json:"updates"`
	Cancellation     *booking.CancellationRecord  `json:"cancellation,omitempty"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

// BookingService implements the booking lifecycle use cases: creation with
// conflict detection and pricing, role-gated status transitions, cancellation
// with refunds, check-in/check-out and progress updates.
type BookingService struct {
	bookings booking.BookingRepository
	listings listing.ListingRepository
	pets     pet.PetRepository
	pricing  booking.PricingStrategy
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings booking.BookingRepository,
	listings listing.ListingRepository,
	pets pet.PetRepository,
	pricing booking.PricingStrategy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		listings: listings,
		pets:     pets,
		pricing:  pricing,
		logger:   logger,
	}
}

// CreateBooking places a reservation for the owner: it resolves the listing
// and pet, checks species support, rejects overlapping slots on the sitter's
// calendar, prices the interval, and persists the booking. The initial status
// follows the listing's instant-booking setting.
func (s *BookingService) CreateBooking(ctx context.Context, ownerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	l, err := s.listings.FindByID(ctx, req.ServiceID)
	if err != nil || !l.IsActive() {
		return nil, domain.NewNotFoundError("service", req.ServiceID.String())
	}

	p, err := s.pets.FindByID(ctx, req.PetID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) || !p.IsActive() {
		return nil, domain.NewNotFoundError("pet", req.PetID.String())
	}

	if !l.SupportsSpecies(p.Species()) {
		return nil, domain.NewValidationError(fmt.Sprintf("this service does not accept %s pets", p.Species()))
	}

	if !req.EndDate.After(req.StartDate) {
		return nil, domain.NewValidationError("end date must be after start date")
	}

	overlapping, err := s.bookings.CountOverlapping(ctx, l.SitterID(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, domain.NewConflictError(booking.SlotUnavailableMessage)
	}

	quote, err := s.pricing.Price(l.Price(), l.PriceType(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	b, err := booking.NewBooking(
		ownerID, l.SitterID(), l.ID(), p.ID(),
		req.StartDate, req.EndDate,
		quote,
		req.Notes, req.EmergencyContact,
		l.InstantBooking(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}

	if b.Status() == booking.StatusConfirmed {
		s.bumpListingBookings(ctx, l.ID())
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("sitter_id", l.SitterID().String()),
		zap.String("status", string(b.Status())),
		zap.String("total_price", b.TotalPrice().String()),
	)
	dto := toBookingDTO(b)
	return &dto, nil
}

// GetBookings lists the caller's bookings: placed bookings for owners, the
// work calendar for sitters.
func (s *BookingService) GetBookings(ctx context.Context, callerID uuid.UUID, role auth.Role, filter booking.ListFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	var (
		bookings []*booking.Booking
		total    int64
		err      error
	)
	switch role {
	case auth.RoleOwner:
		bookings, total, err = s.bookings.FindByOwnerID(ctx, callerID, filter, page, limit)
	case auth.RoleSitter:
		bookings, total, err = s.bookings.FindBySitterID(ctx, callerID, filter, page, limit)
	default:
		return nil, domain.NewForbiddenError("unknown role")
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBooking returns a booking visible to the caller. Bookings the caller is
// not a party to are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.findVisible(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// ChangeStatus applies a role-gated status transition. Owners may only cancel
// their own bookings; sitters may confirm, decline, start or complete bookings
// assigned to them. Every other combination is forbidden.
func (s *BookingService) ChangeStatus(ctx context.Context, callerID uuid.UUID, role auth.Role, bookingID uuid.UUID, req ChangeStatusRequest) (*BookingDTO, error) {
	target, err := booking.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	b, err := s.findVisible(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}

	switch role {
	case auth.RoleOwner:
		if target != booking.StatusCancelled {
			return nil, domain.NewForbiddenError("owners may only cancel their bookings")
		}
		if err := b.Cancel(callerID, req.Notes, time.Now().UTC()); err != nil {
			return nil, err
		}
	case auth.RoleSitter:
		if err := s.applySitterTransition(b, target); err != nil {
			return nil, err
		}
		b.AppendNote(req.Notes)
	default:
		return nil, domain.NewForbiddenError("unknown role")
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	if target == booking.StatusConfirmed {
		s.bumpListingBookings(ctx, b.ListingID())
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", b.ID().String()),
		zap.String("status", string(b.Status())),
		zap.String("changed_by", callerID.String()),
	)
	dto := toBookingDTO(b)
	return &dto, nil
}

func (s *BookingService) applySitterTransition(b *booking.Booking, target booking.Status) error {
	switch target {
	case booking.StatusConfirmed:
		return b.Confirm()
	case booking.StatusDeclined:
		return b.Decline()
	case booking.StatusInProgress:
		return b.Start()
	case booking.StatusCompleted:
		return b.Complete()
	case booking.StatusCancelled:
		return domain.NewForbiddenError("sitters cannot cancel bookings; decline them instead")
	default:
		return domain.NewForbiddenError(fmt.Sprintf("sitters cannot set bookings to %s", target))
	}
}

// CheckIn records the sitter's arrival, moving the booking to in_progress.
func (s *BookingService) CheckIn(ctx context.Context, sitterID, bookingID uuid.UUID, req CheckRequest) (*BookingDTO, error) {
	b, err := s.findAssigned(ctx, sitterID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := b.RecordCheckIn(req.Notes, req.Photos, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// CheckOut records the end of the stay, moving the booking to completed.
func (s *BookingService) CheckOut(ctx context.Context, sitterID, bookingID uuid.UUID, req CheckRequest) (*BookingDTO, error) {
	b, err := s.findAssigned(ctx, sitterID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := b.RecordCheckOut(req.Notes, req.Photos, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// AddUpdate posts a progress update on an in-progress booking.
func (s *BookingService) AddUpdate(ctx context.Context, sitterID, bookingID uuid.UUID, req AddUpdateRequest) (*BookingDTO, error) {
	b, err := s.findAssigned(ctx, sitterID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := b.AddUpdate(sitterID, req.Message, req.Photos, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// bumpListingBookings increments the listing's confirmed-booking counter.
// Failures are logged and never fail the booking operation itself.
func (s *BookingService) bumpListingBookings(ctx context.Context, listingID uuid.UUID) {
	if err := s.listings.IncrementTotalBookings(ctx, listingID); err != nil {
		s.logger.Error("failed to increment listing booking counter",
			zap.String("listing_id", listingID.String()),
			zap.Error(err),
		)
	}
}

func (s *BookingService) findVisible(ctx context.Context, callerID, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsOwnedBy(callerID) && !b.IsAssignedTo(callerID) {
		return nil, domain.NewNotFoundError("booking", bookingID.String())
	}
	return b, nil
}

func (s *BookingService) findAssigned(ctx context.Context, sitterID, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsAssignedTo(sitterID) {
		return nil, domain.NewNotFoundError("booking", bookingID.String())
	}
	return b, nil
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	updates := b.Updates()
	if updates == nil {
		updates = []booking.UpdateEntry{}
	}
	return BookingDTO{
		ID:               b.ID(),
		OwnerID:          b.OwnerID(),
		SitterID:         b.SitterID(),
		ServiceID:        b.ListingID(),
		PetID:            b.PetID(),
		StartDate:        b.StartDate(),
		EndDate:          b.EndDate(),
		Status:           string(b.Status()),
		BasePrice:        b.BasePrice(),
		ServiceFee:       b.ServiceFee(),
		TotalPrice:       b.TotalPrice(),
		Notes:            b.Notes(),
		EmergencyContact: b.EmergencyContact(),
		CheckIn:          b.CheckIn(),
		CheckOut:         b.CheckOut(),
		Updates:          updates,
		Cancellation:     b.Cancellation(),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}
}
