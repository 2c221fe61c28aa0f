package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/booking"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
)

type bookingFixture struct {
	service  *BookingService
	bookings *fakeBookingRepo
	listings *fakeListingRepo
	pets     *fakePetRepo

	ownerID  uuid.UUID
	sitterID uuid.UUID
	listing  *listing.Listing
	pet      *pet.Pet
}

func newBookingFixture(t *testing.T, instantBooking bool) *bookingFixture {
	t.Helper()

	bookings := newFakeBookingRepo()
	listings := newFakeListingRepo()
	pets := newFakePetRepo()

	ownerID := uuid.New()
	sitterID := uuid.New()

	l, err := listing.NewListing(
		sitterID, listing.ServiceBoarding, "Dog boarding", "",
		decimal.NewFromInt(20), listing.PriceDaily,
		listing.Location{City: "Austin"}, nil,
		[]pet.Species{pet.SpeciesDog}, nil, instantBooking,
	)
	require.NoError(t, err)
	require.NoError(t, listings.Save(context.Background(), l))

	p, err := pet.NewPet(
		ownerID, "Biscuit", pet.SpeciesDog, "corgi", 3, 12, pet.GenderMale, "",
		nil, "", true, false, nil, nil, pet.VetInfo{},
	)
	require.NoError(t, err)
	require.NoError(t, pets.Save(context.Background(), p))

	service := NewBookingService(bookings, listings, pets, booking.NewStandardPricingStrategy(), zap.NewNop())
	return &bookingFixture{
		service:  service,
		bookings: bookings,
		listings: listings,
		pets:     pets,
		ownerID:  ownerID,
		sitterID: sitterID,
		listing:  l,
		pet:      p,
	}
}

func (f *bookingFixture) createRequest(startIn time.Duration, days int) CreateBookingRequest {
	start := time.Now().UTC().Add(startIn)
	return CreateBookingRequest{
		ServiceID: f.listing.ID(),
		PetID:     f.pet.ID(),
		StartDate: start,
		EndDate:   start.Add(time.Duration(days) * 24 * time.Hour),
	}
}

func TestCreateBookingPricesAndPersists(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 2))
	require.NoError(t, err)

	assert.Equal(t, string(booking.StatusPending), dto.Status)
	assert.Equal(t, f.sitterID, dto.SitterID)
	// 2 days at 20/day plus the 5% fee.
	assert.True(t, dto.BasePrice.Equal(decimal.NewFromInt(40)), "base %s", dto.BasePrice)
	assert.True(t, dto.ServiceFee.Equal(decimal.NewFromInt(2)), "fee %s", dto.ServiceFee)
	assert.True(t, dto.TotalPrice.Equal(decimal.NewFromInt(42)), "total %s", dto.TotalPrice)

	stored, err := f.bookings.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, stored.Status())
}

func TestCreateBookingInstantConfirmsAndCountsBooking(t *testing.T) {
	f := newBookingFixture(t, true)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	assert.Equal(t, string(booking.StatusConfirmed), dto.Status)
	assert.Equal(t, 1, f.listings.increments[f.listing.ID()])
}

func TestCreateBookingRejectsOverlappingSlot(t *testing.T) {
	f := newBookingFixture(t, false)

	_, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 2))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(80*time.Hour, 2))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "no longer available")
}

func TestCreateBookingAllowsDisjointSlots(t *testing.T) {
	f := newBookingFixture(t, false)

	_, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(30*24*time.Hour, 1))
	assert.NoError(t, err)
}

func TestCreateBookingDeclinedSlotDoesNotBlock(t *testing.T) {
	f := newBookingFixture(t, false)

	first, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 2))
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(context.Background(), f.sitterID, auth.RoleSitter, first.ID,
		ChangeStatusRequest{Status: "declined"})
	require.NoError(t, err)

	_, err = f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(80*time.Hour, 2))
	assert.NoError(t, err)
}

func TestCreateBookingRejectsUnsupportedSpecies(t *testing.T) {
	f := newBookingFixture(t, false)

	reptile, err := pet.NewPet(
		f.ownerID, "Ziggy", pet.SpeciesReptile, "", 1, 1, "", "",
		nil, "", false, false, nil, nil, pet.VetInfo{},
	)
	require.NoError(t, err)
	require.NoError(t, f.pets.Save(context.Background(), reptile))

	req := f.createRequest(72*time.Hour, 1)
	req.PetID = reptile.ID()

	_, err = f.service.CreateBooking(context.Background(), f.ownerID, req)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCreateBookingForeignPetIsNotFound(t *testing.T) {
	f := newBookingFixture(t, false)

	req := f.createRequest(72*time.Hour, 1)
	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCreateBookingArchivedListingIsNotFound(t *testing.T) {
	f := newBookingFixture(t, false)
	f.listing.Archive()
	require.NoError(t, f.listings.Update(context.Background(), f.listing))

	_, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestChangeStatusSitterConfirmIncrementsCounter(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	updated, err := f.service.ChangeStatus(context.Background(), f.sitterID, auth.RoleSitter, dto.ID,
		ChangeStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusConfirmed), updated.Status)
	assert.Equal(t, 1, f.listings.increments[f.listing.ID()])
}

func TestChangeStatusOwnerCanOnlyCancel(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(context.Background(), f.ownerID, auth.RoleOwner, dto.ID,
		ChangeStatusRequest{Status: "confirmed"})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	cancelled, err := f.service.ChangeStatus(context.Background(), f.ownerID, auth.RoleOwner, dto.ID,
		ChangeStatusRequest{Status: "cancelled", Notes: "trip cancelled"})
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusCancelled), cancelled.Status)
	require.NotNil(t, cancelled.Cancellation)
	assert.Equal(t, "trip cancelled", cancelled.Cancellation.Reason)
	// More than 48h of lead time refunds the full total.
	assert.True(t, cancelled.Cancellation.RefundAmount.Equal(cancelled.TotalPrice))
}

func TestChangeStatusSitterNotesAreKept(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	declined, err := f.service.ChangeStatus(context.Background(), f.sitterID, auth.RoleSitter, dto.ID,
		ChangeStatusRequest{Status: "declined", Notes: "fully booked that week"})
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusDeclined), declined.Status)
	assert.Contains(t, declined.Notes, "fully booked that week")
}

func TestChangeStatusSitterCannotCancel(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(context.Background(), f.sitterID, auth.RoleSitter, dto.ID,
		ChangeStatusRequest{Status: "cancelled"})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestChangeStatusInvalidTransition(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(context.Background(), f.sitterID, auth.RoleSitter, dto.ID,
		ChangeStatusRequest{Status: "completed"})
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestChangeStatusUnknownStatus(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(context.Background(), f.sitterID, auth.RoleSitter, dto.ID,
		ChangeStatusRequest{Status: "shipped"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestGetBookingHidesOtherParties(t *testing.T) {
	f := newBookingFixture(t, false)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), f.ownerID, dto.ID)
	assert.NoError(t, err)
	_, err = f.service.GetBooking(context.Background(), f.sitterID, dto.ID)
	assert.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), uuid.New(), dto.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCheckInCheckOutFlow(t *testing.T) {
	f := newBookingFixture(t, true)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	checkedIn, err := f.service.CheckIn(context.Background(), f.sitterID, dto.ID,
		CheckRequest{Notes: "arrived", Photos: []string{"/uploads/door.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusInProgress), checkedIn.Status)
	require.NotNil(t, checkedIn.CheckIn)

	withUpdate, err := f.service.AddUpdate(context.Background(), f.sitterID, dto.ID,
		AddUpdateRequest{Message: "morning walk done"})
	require.NoError(t, err)
	require.Len(t, withUpdate.Updates, 1)
	assert.Equal(t, f.sitterID, withUpdate.Updates[0].Author)

	checkedOut, err := f.service.CheckOut(context.Background(), f.sitterID, dto.ID,
		CheckRequest{Notes: "heading home"})
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusCompleted), checkedOut.Status)
	require.NotNil(t, checkedOut.CheckOut)
}

func TestCheckInByStrangerIsNotFound(t *testing.T) {
	f := newBookingFixture(t, true)

	dto, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	_, err = f.service.CheckIn(context.Background(), uuid.New(), dto.ID, CheckRequest{})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGetBookingsByRole(t *testing.T) {
	f := newBookingFixture(t, false)

	_, err := f.service.CreateBooking(context.Background(), f.ownerID, f.createRequest(72*time.Hour, 1))
	require.NoError(t, err)

	ownerView, err := f.service.GetBookings(context.Background(), f.ownerID, auth.RoleOwner, booking.ListFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, ownerView.Items, 1)

	sitterView, err := f.service.GetBookings(context.Background(), f.sitterID, auth.RoleSitter, booking.ListFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, sitterView.Items, 1)

	strangerView, err := f.service.GetBookings(context.Background(), uuid.New(), auth.RoleOwner, booking.ListFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, strangerView.Items)

	pending := booking.StatusPending
	filtered, err := f.service.GetBookings(context.Background(), f.ownerID, auth.RoleOwner, booking.ListFilter{Status: &pending}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, filtered.Items, 1)

	confirmed := booking.StatusConfirmed
	filtered, err = f.service.GetBookings(context.Background(), f.ownerID, auth.RoleOwner, booking.ListFilter{Status: &confirmed}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, filtered.Items)
}
