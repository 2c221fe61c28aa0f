package listing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
)

// ServiceType represents the kind of care a listing offers.
type ServiceType string

const (
	ServiceBoarding     ServiceType = "boarding"
	ServiceHouseSitting ServiceType = "house_sitting"
	ServiceDropIn       ServiceType = "drop_in"
	ServiceDayCare      ServiceType = "day_care"
	ServiceWalking      ServiceType = "walking"
	ServiceGrooming     ServiceType = "grooming"
)

// IsValid returns true if the service type is recognized.
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceBoarding, ServiceHouseSitting, ServiceDropIn, ServiceDayCare, ServiceWalking, ServiceGrooming:
		return true
	}
	return false
}

// PriceType represents the unit the listing price is quoted in.
type PriceType string

const (
	PriceHourly     PriceType = "hourly"
	PriceDaily      PriceType = "daily"
	PriceWeekly     PriceType = "weekly"
	PricePerService PriceType = "per_service"
)

// IsValid returns true if the price type is recognized.
func (t PriceType) IsValid() bool {
	switch t {
	case PriceHourly, PriceDaily, PriceWeekly, PricePerService:
		return true
	}
	return false
}

// Location describes where a service is offered.
type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AvailabilityWindow is a recurring weekly slot during which the sitter accepts work.
type AvailabilityWindow struct {
	Weekday   time.Weekday `json:"weekday"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
}

// Rating is the review aggregate carried on a listing.
type Rating struct {
	Average decimal.Decimal `json:"average"`
	Count   int64           `json:"count"`
}

// ListingStatus represents the lifecycle state of a listing.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusArchived ListingStatus = "archived"
)

// Listing is the aggregate root for a sitter's service offering.
type Listing struct {
	id             uuid.UUID
	sitterID       uuid.UUID
	serviceType    ServiceType
	title          string
	description    string
	price          decimal.Decimal
	priceType      PriceType
	location       Location
	availability   []AvailabilityWindow
	petTypes       []pet.Species
	imageURLs      []string
	instantBooking bool
	rating         Rating
	totalBookings  int64
	status         ListingStatus
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewListing creates a new active service listing. The sitter is fixed for the
// lifetime of the listing, and at least one supported species is required.
func NewListing(
	sitterID uuid.UUID,
	serviceType ServiceType,
	title, description string,
	price decimal.Decimal,
	priceType PriceType,
	location Location,
	availability []AvailabilityWindow,
	petTypes []pet.Species,
	imageURLs []string,
	instantBooking bool,
) (*Listing, error) {
	if sitterID == uuid.Nil {
		return nil, domain.NewValidationError("sitter ID is required")
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if price.IsNegative() || price.IsZero() {
		return nil, domain.NewValidationError("price must be positive")
	}
	if !priceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid price type: %s", priceType))
	}
	if len(petTypes) == 0 {
		return nil, domain.NewValidationError("at least one supported pet type is required")
	}
	for _, s := range petTypes {
		if !s.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid pet type: %s", s))
		}
	}

	now := time.Now().UTC()
	return &Listing{
		id:             uuid.New(),
		sitterID:       sitterID,
		serviceType:    serviceType,
		title:          title,
		description:    description,
		price:          price,
		priceType:      priceType,
		location:       location,
		availability:   availability,
		petTypes:       petTypes,
		imageURLs:      imageURLs,
		instantBooking: instantBooking,
		rating:         Rating{Average: decimal.Zero},
		status:         ListingStatusActive,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Listing from persistence data (no validation).
func Reconstruct(
	id, sitterID uuid.UUID,
	serviceType ServiceType,
	title, description string,
	price decimal.Decimal,
	priceType PriceType,
	location Location,
	availability []AvailabilityWindow,
	petTypes []pet.Species,
	imageURLs []string,
	instantBooking bool,
	rating Rating,
	totalBookings int64,
	status ListingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Listing {
	return &Listing{
		id:             id,
		sitterID:       sitterID,
		serviceType:    serviceType,
		title:          title,
		description:    description,
		price:          price,
		priceType:      priceType,
		location:       location,
		availability:   availability,
		petTypes:       petTypes,
		imageURLs:      imageURLs,
		instantBooking: instantBooking,
		rating:         rating,
		totalBookings:  totalBookings,
		status:         status,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (l *Listing) ID() uuid.UUID                       { return l.id }
func (l *Listing) SitterID() uuid.UUID                 { return l.sitterID }
func (l *Listing) ServiceType() ServiceType            { return l.serviceType }
func (l *Listing) Title() string                       { return l.title }
func (l *Listing) Description() string                 { return l.description }
func (l *Listing) Price() decimal.Decimal              { return l.price }
func (l *Listing) PriceType() PriceType                { return l.priceType }
func (l *Listing) Location() Location                  { return l.location }
func (l *Listing) Availability() []AvailabilityWindow  { return l.availability }
func (l *Listing) PetTypes() []pet.Species             { return l.petTypes }
func (l *Listing) ImageURLs() []string                 { return l.imageURLs }
func (l *Listing) InstantBooking() bool                { return l.instantBooking }
func (l *Listing) Rating() Rating                      { return l.rating }
func (l *Listing) TotalBookings() int64                { return l.totalBookings }
func (l *Listing) Status() ListingStatus               { return l.status }
func (l *Listing) Version() int64                      { return l.version }
func (l *Listing) CreatedAt() time.Time                { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time                { return l.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the listing belongs to the given sitter.
func (l *Listing) IsOwnedBy(sitterID uuid.UUID) bool {
	return l.sitterID == sitterID
}

// IsActive returns true if the listing has not been archived.
func (l *Listing) IsActive() bool {
	return l.status == ListingStatusActive
}

// SupportsSpecies reports whether the listing accepts pets of the given species.
func (l *Listing) SupportsSpecies(s pet.Species) bool {
	for _, t := range l.petTypes {
		if t == s {
			return true
		}
	}
	return false
}

// FieldUpdate carries the optional fields of a listing update. Nil pointers
// leave the current value untouched.
type FieldUpdate struct {
	ServiceType    *ServiceType
	Title          *string
	Description    *string
	Price          *decimal.Decimal
	PriceType      *PriceType
	Location       *Location
	Availability   []AvailabilityWindow
	PetTypes       []pet.Species
	InstantBooking *bool
}

// Update applies a partial field update to the listing.
func (l *Listing) Update(f FieldUpdate) error {
	if f.ServiceType != nil {
		if !f.ServiceType.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("invalid service type: %s", *f.ServiceType))
		}
		l.serviceType = *f.ServiceType
	}
	if f.Title != nil && *f.Title != "" {
		l.title = *f.Title
	}
	if f.Description != nil {
		l.description = *f.Description
	}
	if f.Price != nil {
		if f.Price.IsNegative() || f.Price.IsZero() {
			return domain.NewValidationError("price must be positive")
		}
		l.price = *f.Price
	}
	if f.PriceType != nil {
		if !f.PriceType.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("invalid price type: %s", *f.PriceType))
		}
		l.priceType = *f.PriceType
	}
	if f.Location != nil {
		l.location = *f.Location
	}
	if f.Availability != nil {
		l.availability = f.Availability
	}
	if f.PetTypes != nil {
		if len(f.PetTypes) == 0 {
			return domain.NewValidationError("at least one supported pet type is required")
		}
		for _, s := range f.PetTypes {
			if !s.IsValid() {
				return domain.NewValidationError(fmt.Sprintf("invalid pet type: %s", s))
			}
		}
		l.petTypes = f.PetTypes
	}
	if f.InstantBooking != nil {
		l.instantBooking = *f.InstantBooking
	}
	l.version++
	l.updatedAt = time.Now().UTC()
	return nil
}

// AppendImages adds uploaded image URLs to the end of the image list.
func (l *Listing) AppendImages(urls []string) {
	if len(urls) == 0 {
		return
	}
	l.imageURLs = append(l.imageURLs, urls...)
	l.version++
	l.updatedAt = time.Now().UTC()
}

// ReplaceImages swaps the image list for the given URLs, returning the evicted ones.
func (l *Listing) ReplaceImages(urls []string) []string {
	old := l.imageURLs
	l.imageURLs = urls
	l.version++
	l.updatedAt = time.Now().UTC()
	return old
}

// RemoveImageAt removes the image at the given position, returning its URL so
// the caller can evict the blob.
func (l *Listing) RemoveImageAt(index int) (string, error) {
	if index < 0 || index >= len(l.imageURLs) {
		return "", domain.NewValidationError(fmt.Sprintf("image index %d out of range", index))
	}
	removed := l.imageURLs[index]
	l.imageURLs = append(l.imageURLs[:index], l.imageURLs[index+1:]...)
	l.version++
	l.updatedAt = time.Now().UTC()
	return removed, nil
}

// Archive soft-deletes the listing. Archiving an archived listing is a no-op.
func (l *Listing) Archive() {
	if l.status == ListingStatusArchived {
		return
	}
	l.status = ListingStatusArchived
	l.version++
	l.updatedAt = time.Now().UTC()
}
