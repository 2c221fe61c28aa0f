package pet

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawnest/service-marketplace/internal/domain"
)

// Species represents the kind of animal a pet profile describes.
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesRabbit  Species = "rabbit"
	SpeciesReptile Species = "reptile"
	SpeciesOther   Species = "other"
)

// IsValid returns true if the species is recognized.
func (s Species) IsValid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesReptile, SpeciesOther:
		return true
	}
	return false
}

// Gender represents the pet's sex as recorded by the owner.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// VetInfo holds the pet's veterinarian contact details.
type VetInfo struct {
	Name    string `json:"name"`
	Clinic  string `json:"clinic"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PetStatus represents the lifecycle state of a pet profile.
type PetStatus string

const (
	PetStatusActive   PetStatus = "active"
	PetStatusArchived PetStatus = "archived"
)

// Pet is the aggregate root for an owner's pet profile.
type Pet struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	name         string
	species      Species
	breed        string
	ageYears     int
	weightKg     float64
	gender       Gender
	color        string
	photoURLs    []string
	specialNeeds string
	vaccinated   bool
	microchipped bool
	medications  []string
	allergies    []string
	vetInfo      VetInfo
	status       PetStatus
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

// NewPet creates a new active pet profile. The owner is fixed for the lifetime
// of the profile.
func NewPet(
	ownerID uuid.UUID,
	name string,
	species Species,
	breed string,
	ageYears int,
	weightKg float64,
	gender Gender,
	color string,
	photoURLs []string,
	specialNeeds string,
	vaccinated, microchipped bool,
	medications, allergies []string,
	vetInfo VetInfo,
) (*Pet, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("pet name is required")
	}
	if !species.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid species: %s", species))
	}
	if ageYears < 0 {
		return nil, domain.NewValidationError("age cannot be negative")
	}
	if weightKg < 0 {
		return nil, domain.NewValidationError("weight cannot be negative")
	}
	if gender == "" {
		gender = GenderUnknown
	}

	now := time.Now().UTC()
	return &Pet{
		id:           uuid.New(),
		ownerID:      ownerID,
		name:         name,
		species:      species,
		breed:        breed,
		ageYears:     ageYears,
		weightKg:     weightKg,
		gender:       gender,
		color:        color,
		photoURLs:    photoURLs,
		specialNeeds: specialNeeds,
		vaccinated:   vaccinated,
		microchipped: microchipped,
		medications:  medications,
		allergies:    allergies,
		vetInfo:      vetInfo,
		status:       PetStatusActive,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Pet from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name string,
	species Species,
	breed string,
	ageYears int,
	weightKg float64,
	gender Gender,
	color string,
	photoURLs []string,
	specialNeeds string,
	vaccinated, microchipped bool,
	medications, allergies []string,
	vetInfo VetInfo,
	status PetStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Pet {
	return &Pet{
		id:           id,
		ownerID:      ownerID,
		name:         name,
		species:      species,
		breed:        breed,
		ageYears:     ageYears,
		weightKg:     weightKg,
		gender:       gender,
		color:        color,
		photoURLs:    photoURLs,
		specialNeeds: specialNeeds,
		vaccinated:   vaccinated,
		microchipped: microchipped,
		medications:  medications,
		allergies:    allergies,
		vetInfo:      vetInfo,
		status:       status,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (p *Pet) ID() uuid.UUID         { return p.id }
func (p *Pet) OwnerID() uuid.UUID    { return p.ownerID }
func (p *Pet) Name() string          { return p.name }
func (p *Pet) Species() Species      { return p.species }
func (p *Pet) Breed() string         { return p.breed }
func (p *Pet) AgeYears() int         { return p.ageYears }
func (p *Pet) WeightKg() float64     { return p.weightKg }
func (p *Pet) Gender() Gender        { return p.gender }
func (p *Pet) Color() string         { return p.color }
func (p *Pet) PhotoURLs() []string   { return p.photoURLs }
func (p *Pet) SpecialNeeds() string  { return p.specialNeeds }
func (p *Pet) Vaccinated() bool      { return p.vaccinated }
func (p *Pet) Microchipped() bool    { return p.microchipped }
func (p *Pet) Medications() []string { return p.medications }
func (p *Pet) Allergies() []string   { return p.allergies }
func (p *Pet) VetInfo() VetInfo      { return p.vetInfo }
func (p *Pet) Status() PetStatus     { return p.status }
func (p *Pet) Version() int64        { return p.version }
func (p *Pet) CreatedAt() time.Time  { return p.createdAt }
func (p *Pet) UpdatedAt() time.Time  { return p.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the pet belongs to the given owner.
func (p *Pet) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// IsActive returns true if the pet profile has not been archived.
func (p *Pet) IsActive() bool {
	return p.status == PetStatusActive
}

// FieldUpdate carries the optional fields of a profile update. Nil pointers
// leave the current value untouched.
type FieldUpdate struct {
	Name         *string
	Species      *Species
	Breed        *string
	AgeYears     *int
	WeightKg     *float64
	Gender       *Gender
	Color        *string
	SpecialNeeds *string
	Vaccinated   *bool
	Microchipped *bool
	Medications  []string
	Allergies    []string
	VetInfo      *VetInfo
}

// Update applies a partial field update to the profile.
func (p *Pet) Update(f FieldUpdate) error {
	if f.Name != nil && *f.Name != "" {
		p.name = *f.Name
	}
	if f.Species != nil {
		if !f.Species.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("invalid species: %s", *f.Species))
		}
		p.species = *f.Species
	}
	if f.Breed != nil {
		p.breed = *f.Breed
	}
	if f.AgeYears != nil {
		if *f.AgeYears < 0 {
			return domain.NewValidationError("age cannot be negative")
		}
		p.ageYears = *f.AgeYears
	}
	if f.WeightKg != nil {
		if *f.WeightKg < 0 {
			return domain.NewValidationError("weight cannot be negative")
		}
		p.weightKg = *f.WeightKg
	}
	if f.Gender != nil {
		p.gender = *f.Gender
	}
	if f.Color != nil {
		p.color = *f.Color
	}
	if f.SpecialNeeds != nil {
		p.specialNeeds = *f.SpecialNeeds
	}
	if f.Vaccinated != nil {
		p.vaccinated = *f.Vaccinated
	}
	if f.Microchipped != nil {
		p.microchipped = *f.Microchipped
	}
	if f.Medications != nil {
		p.medications = f.Medications
	}
	if f.Allergies != nil {
		p.allergies = f.Allergies
	}
	if f.VetInfo != nil {
		p.vetInfo = *f.VetInfo
	}
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// AppendPhotos adds uploaded photo URLs to the end of the photo list.
func (p *Pet) AppendPhotos(urls []string) {
	if len(urls) == 0 {
		return
	}
	p.photoURLs = append(p.photoURLs, urls...)
	p.version++
	p.updatedAt = time.Now().UTC()
}

// ReplacePhotos swaps the photo list for the given URLs, returning the evicted ones.
func (p *Pet) ReplacePhotos(urls []string) []string {
	old := p.photoURLs
	p.photoURLs = urls
	p.version++
	p.updatedAt = time.Now().UTC()
	return old
}

// RemovePhotoAt removes the photo at the given position, returning its URL so
// the caller can evict the blob.
func (p *Pet) RemovePhotoAt(index int) (string, error) {
	if index < 0 || index >= len(p.photoURLs) {
		return "", domain.NewValidationError(fmt.Sprintf("photo index %d out of range", index))
	}
	removed := p.photoURLs[index]
	p.photoURLs = append(p.photoURLs[:index], p.photoURLs[index+1:]...)
	p.version++
	p.updatedAt = time.Now().UTC()
	return removed, nil
}

// Archive soft-deletes the pet profile. Archiving an archived profile is a no-op.
func (p *Pet) Archive() {
	if p.status == PetStatusArchived {
		return
	}
	p.status = PetStatusArchived
	p.version++
	p.updatedAt = time.Now().UTC()
}
