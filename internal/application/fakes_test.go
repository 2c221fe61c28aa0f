package application

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/booking"
	"github.com/pawnest/service-marketplace/internal/domain/identity"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
)

// In-memory repository fakes for exercising the services without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", email)
}

func (r *fakeUserRepo) Save(_ context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return domain.NewConflictError("an account with this email already exists")
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

type fakePetRepo struct {
	mu   sync.Mutex
	pets map[uuid.UUID]*pet.Pet
}

func newFakePetRepo() *fakePetRepo {
	return &fakePetRepo{pets: make(map[uuid.UUID]*pet.Pet)}
}

func (r *fakePetRepo) FindByID(_ context.Context, id uuid.UUID) (*pet.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, domain.NewNotFoundError("pet", id.String())
	}
	return p, nil
}

func (r *fakePetRepo) FindActiveByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*pet.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*pet.Pet
	for _, p := range r.pets {
		if p.IsOwnedBy(ownerID) && p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePetRepo) Save(_ context.Context, p *pet.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pets[p.ID()] = p
	return nil
}

func (r *fakePetRepo) Update(_ context.Context, p *pet.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pets[p.ID()] = p
	return nil
}

type fakeListingRepo struct {
	mu         sync.Mutex
	listings   map[uuid.UUID]*listing.Listing
	increments map[uuid.UUID]int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings:   make(map[uuid.UUID]*listing.Listing),
		increments: make(map[uuid.UUID]int),
	}
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.NewNotFoundError("service", id.String())
	}
	return l, nil
}

func (r *fakeListingRepo) FindActiveBySitterID(_ context.Context, sitterID uuid.UUID) ([]*listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*listing.Listing
	for _, l := range r.listings {
		if l.IsOwnedBy(sitterID) && l.IsActive() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) Search(_ context.Context, filter listing.SearchFilter, page, limit int) ([]*listing.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*listing.Listing
	for _, l := range r.listings {
		if !l.IsActive() {
			continue
		}
		if filter.ServiceType != nil && l.ServiceType() != *filter.ServiceType {
			continue
		}
		if filter.PetType != nil && !l.SupportsSpecies(*filter.PetType) {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (r *fakeListingRepo) Save(_ context.Context, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID()] = l
	return nil
}

func (r *fakeListingRepo) Update(_ context.Context, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID()] = l
	return nil
}

func (r *fakeListingRepo) IncrementTotalBookings(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return domain.NewNotFoundError("service", id.String())
	}
	r.increments[id]++
	return nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*booking.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, filter booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	return r.list(func(b *booking.Booking) bool { return b.IsOwnedBy(ownerID) }, filter)
}

func (r *fakeBookingRepo) FindBySitterID(_ context.Context, sitterID uuid.UUID, filter booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	return r.list(func(b *booking.Booking) bool { return b.IsAssignedTo(sitterID) }, filter)
}

func (r *fakeBookingRepo) list(match func(*booking.Booking) bool, filter booking.ListFilter) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if !match(b) {
			continue
		}
		if filter.Status != nil && b.Status() != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountOverlapping(_ context.Context, sitterID uuid.UUID, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookings {
		if b.IsAssignedTo(sitterID) && b.Status().IsBlocking() && b.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	saved   int
	removed []string
}

func (s *fakeBlobStore) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved++
	return fmt.Sprintf("/uploads/%d-%s", s.saved, file.Filename), nil
}

func (s *fakeBlobStore) Remove(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, url)
	return nil
}
