package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pawnest/service-marketplace/internal/domain"
	bookingDomain "github.com/pawnest/service-marketplace/internal/domain/booking"
)

// pgExclusionViolation is the SQLSTATE raised by the sitter-calendar overlap
// guard when a concurrent booking wins the slot first.
const pgExclusionViolation = "23P01"

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	SitterID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	ListingID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	PetID            uuid.UUID       `gorm:"type:uuid;not null"`
	StartDate        time.Time       `gorm:"not null;index"`
	EndDate          time.Time       `gorm:"not null"`
	Status           string          `gorm:"not null;size:20;index"`
	BasePrice        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ServiceFee       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Notes            string          `gorm:"size:2000"`
	EmergencyContact string          `gorm:"size:200"`
	CheckIn          json.RawMessage `gorm:"type:jsonb"`
	CheckOut         json.RawMessage `gorm:"type:jsonb"`
	Updates          json.RawMessage `gorm:"type:jsonb"`
	Cancellation     json.RawMessage `gorm:"type:jsonb"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByOwnerID retrieves bookings placed by an owner, filtered and paginated.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findScoped(ctx, "owner_id = ?", ownerID, filter, page, limit)
}

// FindBySitterID retrieves bookings on a sitter's calendar, filtered and paginated.
func (r *GormBookingRepository) FindBySitterID(ctx context.Context, sitterID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findScoped(ctx, "sitter_id = ?", sitterID, filter, page, limit)
}

func (r *GormBookingRepository) findScoped(ctx context.Context, scope string, id uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where(scope, id)

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.From != nil {
		query = query.Where("start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountOverlapping counts the sitter's blocking-status bookings whose interval
// intersects [start, end].
func (r *GormBookingRepository) CountOverlapping(ctx context.Context, sitterID uuid.UUID, start, end time.Time) (int64, error) {
	blocking := bookingDomain.BlockingStatuses()
	statuses := make([]string, len(blocking))
	for i, s := range blocking {
		statuses[i] = string(s)
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("sitter_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?",
			sitterID, statuses, end, start).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

// Save persists a new booking. A violation of the calendar exclusion
// constraint means a concurrent booking took the slot and surfaces as the
// same conflict the pre-check raises.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return domain.NewConflictError(bookingDomain.SlotUnavailableMessage)
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"notes":        model.Notes,
			"check_in":     model.CheckIn,
			"check_out":    model.CheckOut,
			"updates":      model.Updates,
			"cancellation": model.Cancellation,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another request")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	checkIn, err := marshalOptional(bk.CheckIn())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check-in record: %w", err)
	}
	checkOut, err := marshalOptional(bk.CheckOut())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check-out record: %w", err)
	}
	var updates json.RawMessage
	if len(bk.Updates()) > 0 {
		updates, err = json.Marshal(bk.Updates())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal update log: %w", err)
		}
	}
	cancellation, err := marshalOptional(bk.Cancellation())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cancellation record: %w", err)
	}

	return &BookingModel{
		ID:               bk.ID(),
		OwnerID:          bk.OwnerID(),
		SitterID:         bk.SitterID(),
		ListingID:        bk.ListingID(),
		PetID:            bk.PetID(),
		StartDate:        bk.StartDate(),
		EndDate:          bk.EndDate(),
		Status:           string(bk.Status()),
		BasePrice:        bk.BasePrice(),
		ServiceFee:       bk.ServiceFee(),
		TotalPrice:       bk.TotalPrice(),
		Notes:            bk.Notes(),
		EmergencyContact: bk.EmergencyContact(),
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Updates:          updates,
		Cancellation:     cancellation,
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var checkIn *bookingDomain.CheckRecord
	if len(m.CheckIn) > 0 {
		var rec bookingDomain.CheckRecord
		if err := json.Unmarshal(m.CheckIn, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal check-in record: %w", err)
		}
		checkIn = &rec
	}
	var checkOut *bookingDomain.CheckRecord
	if len(m.CheckOut) > 0 {
		var rec bookingDomain.CheckRecord
		if err := json.Unmarshal(m.CheckOut, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal check-out record: %w", err)
		}
		checkOut = &rec
	}
	var updates []bookingDomain.UpdateEntry
	if len(m.Updates) > 0 {
		if err := json.Unmarshal(m.Updates, &updates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal update log: %w", err)
		}
	}
	var cancellation *bookingDomain.CancellationRecord
	if len(m.Cancellation) > 0 {
		var rec bookingDomain.CancellationRecord
		if err := json.Unmarshal(m.Cancellation, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cancellation record: %w", err)
		}
		cancellation = &rec
	}

	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.SitterID,
		m.ListingID,
		m.PetID,
		m.StartDate,
		m.EndDate,
		status,
		m.BasePrice,
		m.ServiceFee,
		m.TotalPrice,
		m.Notes,
		m.EmergencyContact,
		checkIn,
		checkOut,
		updates,
		cancellation,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func marshalOptional[T any](rec *T) (json.RawMessage, error) {
	if rec == nil {
		return nil, nil
	}
	return json.Marshal(rec)
}
