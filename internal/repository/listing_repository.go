package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pawnest/service-marketplace/internal/domain"
	listingDomain "github.com/pawnest/service-marketplace/internal/domain/listing"
	petDomain "github.com/pawnest/service-marketplace/internal/domain/pet"
)

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SitterID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ServiceType    string          `gorm:"not null;size:20;index"`
	Title          string          `gorm:"not null;size:200"`
	Description    string          `gorm:"size:5000"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PriceType      string          `gorm:"not null;size:20"`
	City           string          `gorm:"size:100;index"`
	Location       json.RawMessage `gorm:"type:jsonb"`
	Availability   json.RawMessage `gorm:"type:jsonb"`
	PetTypes       json.RawMessage `gorm:"type:jsonb;not null"`
	ImageURLs      json.RawMessage `gorm:"type:jsonb"`
	InstantBooking bool            `gorm:"not null;default:false"`
	RatingAverage  decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0"`
	RatingCount    int64           `gorm:"not null;default:0"`
	TotalBookings  int64           `gorm:"not null;default:0"`
	Status         string          `gorm:"not null;size:20;index"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ListingModel) TableName() string {
	return "listings"
}

// GormListingRepository is the GORM-based implementation of ListingRepository.
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository.
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID retrieves a listing by its unique identifier.
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("service", id.String())
		}
		return nil, fmt.Errorf("failed to find listing by ID: %w", err)
	}
	return toDomainListing(&model)
}

// FindActiveBySitterID retrieves the active listings for a sitter.
func (r *GormListingRepository) FindActiveBySitterID(ctx context.Context, sitterID uuid.UUID) ([]*listingDomain.Listing, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).
		Where("sitter_id = ? AND status = ?", sitterID, string(listingDomain.ListingStatusActive)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find listings by sitter: %w", err)
	}
	return toDomainListings(models)
}

// Search returns active listings matching the filter, paginated.
func (r *GormListingRepository) Search(ctx context.Context, filter listingDomain.SearchFilter, page, limit int) ([]*listingDomain.Listing, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("status = ?", string(listingDomain.ListingStatusActive))

	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}
	if filter.ServiceType != nil {
		query = query.Where("service_type = ?", string(*filter.ServiceType))
	}
	if filter.PetType != nil {
		species, err := json.Marshal([]string{string(*filter.PetType)})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal pet type filter: %w", err)
		}
		query = query.Where("pet_types @> ?", string(species))
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		query = query.Where("rating_average >= ?", *filter.MinRating)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	switch filter.Sort {
	case listingDomain.SortPriceAsc:
		query = query.Order("price ASC")
	case listingDomain.SortPriceDesc:
		query = query.Order("price DESC")
	case listingDomain.SortRating:
		query = query.Order("rating_average DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var models []ListingModel
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}

	listings, err := toDomainListings(models)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// Save persists a new listing.
func (r *GormListingRepository) Save(ctx context.Context, listing *listingDomain.Listing) error {
	model, err := toListingModel(listing)
	if err != nil {
		return fmt.Errorf("failed to convert listing to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// Update persists changes to an existing listing with optimistic locking.
func (r *GormListingRepository) Update(ctx context.Context, listing *listingDomain.Listing) error {
	model, err := toListingModel(listing)
	if err != nil {
		return fmt.Errorf("failed to convert listing to model: %w", err)
	}

	expectedVersion := listing.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"service_type":    model.ServiceType,
			"title":           model.Title,
			"description":     model.Description,
			"price":           model.Price,
			"price_type":      model.PriceType,
			"city":            model.City,
			"location":        model.Location,
			"availability":    model.Availability,
			"pet_types":       model.PetTypes,
			"image_urls":      model.ImageURLs,
			"instant_booking": model.InstantBooking,
			"status":          model.Status,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("listing was modified by another request")
	}
	return nil
}

// IncrementTotalBookings atomically bumps the booking counter for a listing.
func (r *GormListingRepository) IncrementTotalBookings(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ?", id).
		UpdateColumn("total_bookings", gorm.Expr("total_bookings + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment total bookings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("service", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toListingModel(l *listingDomain.Listing) (*ListingModel, error) {
	location, err := json.Marshal(l.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}
	availability, err := json.Marshal(l.Availability())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal availability: %w", err)
	}
	petTypes, err := json.Marshal(l.PetTypes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pet types: %w", err)
	}
	images, err := json.Marshal(emptyIfNil(l.ImageURLs()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image URLs: %w", err)
	}

	return &ListingModel{
		ID:             l.ID(),
		SitterID:       l.SitterID(),
		ServiceType:    string(l.ServiceType()),
		Title:          l.Title(),
		Description:    l.Description(),
		Price:          l.Price(),
		PriceType:      string(l.PriceType()),
		City:           l.Location().City,
		Location:       location,
		Availability:   availability,
		PetTypes:       petTypes,
		ImageURLs:      images,
		InstantBooking: l.InstantBooking(),
		RatingAverage:  l.Rating().Average,
		RatingCount:    l.Rating().Count,
		TotalBookings:  l.TotalBookings(),
		Status:         string(l.Status()),
		Version:        l.Version(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}, nil
}

func toDomainListing(m *ListingModel) (*listingDomain.Listing, error) {
	var location listingDomain.Location
	if len(m.Location) > 0 {
		if err := json.Unmarshal(m.Location, &location); err != nil {
			return nil, fmt.Errorf("failed to unmarshal location: %w", err)
		}
	}
	var availability []listingDomain.AvailabilityWindow
	if len(m.Availability) > 0 {
		if err := json.Unmarshal(m.Availability, &availability); err != nil {
			return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
		}
	}
	var petTypes []petDomain.Species
	if err := json.Unmarshal(m.PetTypes, &petTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pet types: %w", err)
	}
	var images []string
	if err := unmarshalList(m.ImageURLs, &images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image URLs: %w", err)
	}

	return listingDomain.Reconstruct(
		m.ID,
		m.SitterID,
		listingDomain.ServiceType(m.ServiceType),
		m.Title,
		m.Description,
		m.Price,
		listingDomain.PriceType(m.PriceType),
		location,
		availability,
		petTypes,
		images,
		m.InstantBooking,
		listingDomain.Rating{Average: m.RatingAverage, Count: m.RatingCount},
		m.TotalBookings,
		listingDomain.ListingStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainListings(models []ListingModel) ([]*listingDomain.Listing, error) {
	listings := make([]*listingDomain.Listing, len(models))
	for i, m := range models {
		l, err := toDomainListing(&m)
		if err != nil {
			return nil, err
		}
		listings[i] = l
	}
	return listings, nil
}
