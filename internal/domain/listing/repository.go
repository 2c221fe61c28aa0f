package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pawnest/service-marketplace/internal/domain/pet"
)

// SortOrder enumerates the supported search result orderings.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortRating    SortOrder = "rating"
)

// SearchFilter holds the optional predicates for the public listing search.
type SearchFilter struct {
	City        string
	ServiceType *ServiceType
	PetType     *pet.Species
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinRating   *decimal.Decimal
	Query       string
	Sort        SortOrder
}

// ListingRepository defines persistence operations for service listings.
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindActiveBySitterID(ctx context.Context, sitterID uuid.UUID) ([]*Listing, error)

	// Search returns active listings matching the filter, paginated.
	Search(ctx context.Context, filter SearchFilter, page, limit int) ([]*Listing, int64, error)

	Save(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error

	// IncrementTotalBookings atomically bumps the booking counter for a listing.
	IncrementTotalBookings(ctx context.Context, id uuid.UUID) error
}
