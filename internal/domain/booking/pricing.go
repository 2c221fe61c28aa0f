package booking

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
)

// serviceFeeRate is the platform fee applied on top of the computed base price.
var serviceFeeRate = decimal.NewFromFloat(0.05)

// Quote is the priced breakdown for a prospective booking.
type Quote struct {
	BasePrice  decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

// PricingStrategy defines the interface for pricing a booking interval.
type PricingStrategy interface {
	// Price returns the quote for the listing price over [start, end).
	Price(unitPrice decimal.Decimal, priceType listing.PriceType, start, end time.Time) (Quote, error)
}

// StandardPricingStrategy implements the marketplace's default pricing rules.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Price computes the base price by billing unit, always rounding partial units
// up, then adds the 5% service fee.
//
//   - hourly: price * ceil(duration in hours)
//   - daily: price * ceil(duration in days)
//   - weekly: price * ceil(duration in weeks)
//   - per_service: flat price
func (s *StandardPricingStrategy) Price(unitPrice decimal.Decimal, priceType listing.PriceType, start, end time.Time) (Quote, error) {
	if !end.After(start) {
		return Quote{}, domain.NewValidationError("end date must be after start date")
	}

	duration := end.Sub(start)

	var units int64
	switch priceType {
	case listing.PriceHourly:
		units = ceilUnits(duration, time.Hour)
	case listing.PriceDaily:
		units = ceilUnits(duration, 24*time.Hour)
	case listing.PriceWeekly:
		units = ceilUnits(duration, 7*24*time.Hour)
	case listing.PricePerService:
		units = 1
	default:
		return Quote{}, domain.NewValidationError("unknown price type: " + string(priceType))
	}

	base := unitPrice.Mul(decimal.NewFromInt(units))
	fee := base.Mul(serviceFeeRate)
	return Quote{
		BasePrice:  base,
		ServiceFee: fee,
		Total:      base.Add(fee),
	}, nil
}

func ceilUnits(duration, unit time.Duration) int64 {
	return int64(math.Ceil(duration.Seconds() / unit.Seconds()))
}
