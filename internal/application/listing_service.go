package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
	"github.com/pawnest/service-marketplace/internal/storage"
)

// ListingFields carries the typed listing fields decoded from a create or
// update request. Nil pointers mean the field was absent from the request.
type ListingFields struct {
	ServiceType    *listing.ServiceType
	Title          *string
	Description    *string
	Price          *decimal.Decimal
	PriceType      *listing.PriceType
	Location       *listing.Location
	Availability   []listing.AvailabilityWindow
	PetTypes       []pet.Species
	InstantBooking *bool
}

// ListingDTO is the outward representation of a service listing.
type ListingDTO struct {
	ID             uuid.UUID                    `json:"id"`
	SitterID       uuid.UUID                    `json:"sitter_id"`
	ServiceType    string                       `json:"service_type"`
	Title          string                       `json:"title"`
	Description    string                       `json:"description,omitempty"`
	Price          decimal.Decimal              `json:"price"`
	PriceType      string                       `json:"price_type"`
	Location       listing.Location             `json:"location"`
	Availability   []listing.AvailabilityWindow `json:"availability"`
	PetTypes       []string                     `json:"pet_types"`
	ImageURLs      []string                     `json:"image_urls"`
	InstantBooking bool                         `json:"instant_booking"`
	Rating         listing.Rating               `json:"rating"`
	TotalBookings  int64                        `json:"total_bookings"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// ListingService implements the sitter-scoped listing use cases plus the
// public search surface.
type ListingService struct {
	listings listing.ListingRepository
	blobs    storage.BlobStore
	logger   *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(listings listing.ListingRepository, blobs storage.BlobStore, logger *zap.Logger) *ListingService {
	return &ListingService{listings: listings, blobs: blobs, logger: logger}
}

// CreateListing creates a service listing for the sitter. imageURLs are blobs
// already stored by the handler; when validation rejects the listing they are
// evicted.
func (s *ListingService) CreateListing(ctx context.Context, sitterID uuid.UUID, fields ListingFields, imageURLs []string) (*ListingDTO, error) {
	var (
		serviceType    listing.ServiceType
		title          string
		description    string
		price          decimal.Decimal
		priceType      listing.PriceType
		location       listing.Location
		instantBooking bool
	)
	if fields.ServiceType != nil {
		serviceType = *fields.ServiceType
	}
	if fields.Title != nil {
		title = *fields.Title
	}
	if fields.Description != nil {
		description = *fields.Description
	}
	if fields.Price != nil {
		price = *fields.Price
	}
	if fields.PriceType != nil {
		priceType = *fields.PriceType
	}
	if fields.Location != nil {
		location = *fields.Location
	}
	if fields.InstantBooking != nil {
		instantBooking = *fields.InstantBooking
	}

	l, err := listing.NewListing(
		sitterID, serviceType, title, description, price, priceType,
		location, fields.Availability, fields.PetTypes, imageURLs, instantBooking,
	)
	if err != nil {
		s.evictBlobs(ctx, imageURLs)
		return nil, err
	}

	if err := s.listings.Save(ctx, l); err != nil {
		s.evictBlobs(ctx, imageURLs)
		return nil, err
	}

	s.logger.Info("listing created",
		zap.String("listing_id", l.ID().String()),
		zap.String("sitter_id", sitterID.String()),
		zap.String("service_type", string(serviceType)),
	)
	dto := toListingDTO(l)
	return &dto, nil
}

// Search returns active listings matching the filter, paginated.
func (s *ListingService) Search(ctx context.Context, filter listing.SearchFilter, page, limit int) (*domain.PaginatedResult[ListingDTO], error) {
	listings, total, err := s.listings.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetListing returns a single active listing for public viewing.
func (s *ListingService) GetListing(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, domain.NewNotFoundError("service", listingID.String())
	}
	dto := toListingDTO(l)
	return &dto, nil
}

// GetMyListings lists the sitter's active listings.
func (s *ListingService) GetMyListings(ctx context.Context, sitterID uuid.UUID) ([]ListingDTO, error) {
	listings, err := s.listings.FindActiveBySitterID(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return dtos, nil
}

// UpdateListing applies a partial update to the sitter's own listing. When
// replaceImages is set the uploaded images replace the existing list and the
// old blobs are evicted; otherwise uploads are appended.
func (s *ListingService) UpdateListing(ctx context.Context, sitterID, listingID uuid.UUID, fields ListingFields, imageURLs []string, replaceImages bool) (*ListingDTO, error) {
	l, err := s.findOwned(ctx, sitterID, listingID)
	if err != nil {
		s.evictBlobs(ctx, imageURLs)
		return nil, err
	}

	if err := l.Update(listing.FieldUpdate{
		ServiceType:    fields.ServiceType,
		Title:          fields.Title,
		Description:    fields.Description,
		Price:          fields.Price,
		PriceType:      fields.PriceType,
		Location:       fields.Location,
		Availability:   fields.Availability,
		PetTypes:       fields.PetTypes,
		InstantBooking: fields.InstantBooking,
	}); err != nil {
		s.evictBlobs(ctx, imageURLs)
		return nil, err
	}

	var evicted []string
	if len(imageURLs) > 0 {
		if replaceImages {
			evicted = l.ReplaceImages(imageURLs)
		} else {
			l.AppendImages(imageURLs)
		}
	}

	if err := s.listings.Update(ctx, l); err != nil {
		s.evictBlobs(ctx, imageURLs)
		return nil, err
	}
	s.evictBlobs(ctx, evicted)

	dto := toListingDTO(l)
	return &dto, nil
}

// DeleteImage removes the image at the given position and evicts its blob.
func (s *ListingService) DeleteImage(ctx context.Context, sitterID, listingID uuid.UUID, index int) (*ListingDTO, error) {
	l, err := s.findOwned(ctx, sitterID, listingID)
	if err != nil {
		return nil, err
	}

	removed, err := l.RemoveImageAt(index)
	if err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, l); err != nil {
		return nil, err
	}
	s.evictBlobs(ctx, []string{removed})

	dto := toListingDTO(l)
	return &dto, nil
}

// DeleteListing soft-deletes a listing and evicts its image blobs. Deleting an
// already archived listing succeeds without changes.
func (s *ListingService) DeleteListing(ctx context.Context, sitterID, listingID uuid.UUID) error {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !l.IsOwnedBy(sitterID) {
		return domain.NewNotFoundError("service", listingID.String())
	}
	if !l.IsActive() {
		return nil
	}

	images := l.ImageURLs()
	l.Archive()
	if err := s.listings.Update(ctx, l); err != nil {
		return err
	}
	s.evictBlobs(ctx, images)

	s.logger.Info("listing archived",
		zap.String("listing_id", listingID.String()),
		zap.String("sitter_id", sitterID.String()),
	)
	return nil
}

func (s *ListingService) findOwned(ctx context.Context, sitterID, listingID uuid.UUID) (*listing.Listing, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !l.IsOwnedBy(sitterID) || !l.IsActive() {
		return nil, domain.NewNotFoundError("service", listingID.String())
	}
	return l, nil
}

func (s *ListingService) evictBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.blobs.Remove(ctx, url); err != nil {
			s.logger.Warn("failed to evict blob", zap.String("url", url), zap.Error(err))
		}
	}
}

func toListingDTO(l *listing.Listing) ListingDTO {
	petTypes := make([]string, len(l.PetTypes()))
	for i, t := range l.PetTypes() {
		petTypes[i] = string(t)
	}
	availability := l.Availability()
	if availability == nil {
		availability = []listing.AvailabilityWindow{}
	}
	return ListingDTO{
		ID:             l.ID(),
		SitterID:       l.SitterID(),
		ServiceType:    string(l.ServiceType()),
		Title:          l.Title(),
		Description:    l.Description(),
		Price:          l.Price(),
		PriceType:      string(l.PriceType()),
		Location:       l.Location(),
		Availability:   availability,
		PetTypes:       petTypes,
		ImageURLs:      emptySlice(l.ImageURLs()),
		InstantBooking: l.InstantBooking(),
		Rating:         l.Rating(),
		TotalBookings:  l.TotalBookings(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}
}
