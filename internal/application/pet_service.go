package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
	"github.com/pawnest/service-marketplace/internal/storage"
)

// PetFields carries the typed profile fields decoded from a create or update
// request. Nil pointers mean the field was absent from the request.
type PetFields struct {
	Name         *string
	Species      *pet.Species
	Breed        *string
	AgeYears     *int
	WeightKg     *float64
	Gender       *pet.Gender
	Color        *string
	SpecialNeeds *string
	Vaccinated   *bool
	Microchipped *bool
	Medications  []string
	Allergies    []string
	VetInfo      *pet.VetInfo
}

// PetDTO is the outward representation of a pet profile.
type PetDTO struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"owner_id"`
	Name         string      `json:"name"`
	Species      string      `json:"species"`
	Breed        string      `json:"breed,omitempty"`
	AgeYears     int         `json:"age_years"`
	WeightKg     float64     `json:"weight_kg"`
	Gender       string      `json:"gender"`
	Color        string      `json:"color,omitempty"`
	PhotoURLs    []string    `json:"photo_urls"`
	SpecialNeeds string      `json:"special_needs,omitempty"`
	Vaccinated   bool        `json:"vaccinated"`
	Microchipped bool        `json:"microchipped"`
	Medications  []string    `json:"medications"`
	Allergies    []string    `json:"allergies"`
	VetInfo      pet.VetInfo `json:"vet_info"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// PetService implements the owner-scoped pet profile use cases. Photo blobs
// are evicted best-effort whenever they fall out of a profile.
type PetService struct {
	pets   pet.PetRepository
	blobs  storage.BlobStore
	logger *zap.Logger
}

// NewPetService creates a new PetService.
func NewPetService(pets pet.PetRepository, blobs storage.BlobStore, logger *zap.Logger) *PetService {
	return &PetService{pets: pets, blobs: blobs, logger: logger}
}

// CreatePet creates a pet profile for the owner. photoURLs are blobs already
// stored by the handler; when validation rejects the profile they are evicted.
func (s *PetService) CreatePet(ctx context.Context, ownerID uuid.UUID, fields PetFields, photoURLs []string) (*PetDTO, error) {
	var (
		name         string
		species      pet.Species
		breed        string
		ageYears     int
		weightKg     float64
		gender       pet.Gender
		color        string
		specialNeeds string
		vaccinated   bool
		microchipped bool
		vetInfo      pet.VetInfo
	)
	if fields.Name != nil {
		name = *fields.Name
	}
	if fields.Species != nil {
		species = *fields.Species
	}
	if fields.Breed != nil {
		breed = *fields.Breed
	}
	if fields.AgeYears != nil {
		ageYears = *fields.AgeYears
	}
	if fields.WeightKg != nil {
		weightKg = *fields.WeightKg
	}
	if fields.Gender != nil {
		gender = *fields.Gender
	}
	if fields.Color != nil {
		color = *fields.Color
	}
	if fields.SpecialNeeds != nil {
		specialNeeds = *fields.SpecialNeeds
	}
	if fields.Vaccinated != nil {
		vaccinated = *fields.Vaccinated
	}
	if fields.Microchipped != nil {
		microchipped = *fields.Microchipped
	}
	if fields.VetInfo != nil {
		vetInfo = *fields.VetInfo
	}

	p, err := pet.NewPet(
		ownerID, name, species, breed, ageYears, weightKg, gender, color,
		photoURLs, specialNeeds, vaccinated, microchipped,
		fields.Medications, fields.Allergies, vetInfo,
	)
	if err != nil {
		s.evictBlobs(ctx, photoURLs)
		return nil, err
	}

	if err := s.pets.Save(ctx, p); err != nil {
		s.evictBlobs(ctx, photoURLs)
		return nil, err
	}

	s.logger.Info("pet profile created",
		zap.String("pet_id", p.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	dto := toPetDTO(p)
	return &dto, nil
}

// GetPets lists the owner's active pet profiles.
func (s *PetService) GetPets(ctx context.Context, ownerID uuid.UUID) ([]PetDTO, error) {
	pets, err := s.pets.FindActiveByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PetDTO, len(pets))
	for i, p := range pets {
		dtos[i] = toPetDTO(p)
	}
	return dtos, nil
}

// GetPet returns one of the owner's active pet profiles. Profiles of other
// owners and archived profiles are reported as not found.
func (s *PetService) GetPet(ctx context.Context, ownerID, petID uuid.UUID) (*PetDTO, error) {
	p, err := s.findOwned(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}
	dto := toPetDTO(p)
	return &dto, nil
}

// UpdatePet applies a partial update. When replacePhotos is set the uploaded
// photos replace the existing list and the old blobs are evicted; otherwise
// uploads are appended.
func (s *PetService) UpdatePet(ctx context.Context, ownerID, petID uuid.UUID, fields PetFields, photoURLs []string, replacePhotos bool) (*PetDTO, error) {
	p, err := s.findOwned(ctx, ownerID, petID)
	if err != nil {
		s.evictBlobs(ctx, photoURLs)
		return nil, err
	}

	if err := p.Update(pet.FieldUpdate{
		Name:         fields.Name,
		Species:      fields.Species,
		Breed:        fields.Breed,
		AgeYears:     fields.AgeYears,
		WeightKg:     fields.WeightKg,
		Gender:       fields.Gender,
		Color:        fields.Color,
		SpecialNeeds: fields.SpecialNeeds,
		Vaccinated:   fields.Vaccinated,
		Microchipped: fields.Microchipped,
		Medications:  fields.Medications,
		Allergies:    fields.Allergies,
		VetInfo:      fields.VetInfo,
	}); err != nil {
		s.evictBlobs(ctx, photoURLs)
		return nil, err
	}

	var evicted []string
	if len(photoURLs) > 0 {
		if replacePhotos {
			evicted = p.ReplacePhotos(photoURLs)
		} else {
			p.AppendPhotos(photoURLs)
		}
	}

	if err := s.pets.Update(ctx, p); err != nil {
		s.evictBlobs(ctx, photoURLs)
		return nil, err
	}
	s.evictBlobs(ctx, evicted)

	dto := toPetDTO(p)
	return &dto, nil
}

// DeletePhoto removes the photo at the given position and evicts its blob.
func (s *PetService) DeletePhoto(ctx context.Context, ownerID, petID uuid.UUID, index int) (*PetDTO, error) {
	p, err := s.findOwned(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	removed, err := p.RemovePhotoAt(index)
	if err != nil {
		return nil, err
	}
	if err := s.pets.Update(ctx, p); err != nil {
		return nil, err
	}
	s.evictBlobs(ctx, []string{removed})

	dto := toPetDTO(p)
	return &dto, nil
}

// DeletePet soft-deletes a pet profile and evicts its photo blobs. Deleting an
// already archived profile succeeds without changes.
func (s *PetService) DeletePet(ctx context.Context, ownerID, petID uuid.UUID) error {
	p, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(ownerID) {
		return domain.NewNotFoundError("pet", petID.String())
	}
	if !p.IsActive() {
		return nil
	}

	photos := p.PhotoURLs()
	p.Archive()
	if err := s.pets.Update(ctx, p); err != nil {
		return err
	}
	s.evictBlobs(ctx, photos)

	s.logger.Info("pet profile archived",
		zap.String("pet_id", petID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return nil
}

func (s *PetService) findOwned(ctx context.Context, ownerID, petID uuid.UUID) (*pet.Pet, error) {
	p, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) || !p.IsActive() {
		return nil, domain.NewNotFoundError("pet", petID.String())
	}
	return p, nil
}

func (s *PetService) evictBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.blobs.Remove(ctx, url); err != nil {
			s.logger.Warn("failed to evict blob", zap.String("url", url), zap.Error(err))
		}
	}
}

func toPetDTO(p *pet.Pet) PetDTO {
	return PetDTO{
		ID:           p.ID(),
		OwnerID:      p.OwnerID(),
		Name:         p.Name(),
		Species:      string(p.Species()),
		Breed:        p.Breed(),
		AgeYears:     p.AgeYears(),
		WeightKg:     p.WeightKg(),
		Gender:       string(p.Gender()),
		Color:        p.Color(),
		PhotoURLs:    emptySlice(p.PhotoURLs()),
		SpecialNeeds: p.SpecialNeeds(),
		Vaccinated:   p.Vaccinated(),
		Microchipped: p.Microchipped(),
		Medications:  emptySlice(p.Medications()),
		Allergies:    emptySlice(p.Allergies()),
		VetInfo:      p.VetInfo(),
		CreatedAt:    p.CreatedAt(),
		UpdatedAt:    p.UpdatedAt(),
	}
}

// emptySlice keeps JSON output as [] instead of null.
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
