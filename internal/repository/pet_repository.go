package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pawnest/service-marketplace/internal/domain"
	petDomain "github.com/pawnest/service-marketplace/internal/domain/pet"
)

// PetModel is the GORM model for the pets table.
type PetModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name         string          `gorm:"not null;size:100"`
	Species      string          `gorm:"not null;size:20;index"`
	Breed        string          `gorm:"size:100"`
	AgeYears     int             `gorm:"not null;default:0"`
	WeightKg     float64         `gorm:"not null;default:0"`
	Gender       string          `gorm:"size:10"`
	Color        string          `gorm:"size:50"`
	PhotoURLs    json.RawMessage `gorm:"type:jsonb"`
	SpecialNeeds string          `gorm:"size:1000"`
	Vaccinated   bool            `gorm:"not null;default:false"`
	Microchipped bool            `gorm:"not null;default:false"`
	Medications  json.RawMessage `gorm:"type:jsonb"`
	Allergies    json.RawMessage `gorm:"type:jsonb"`
	VetInfo      json.RawMessage `gorm:"type:jsonb"`
	Status       string          `gorm:"not null;size:20;index"`
	Version      int64           `gorm:"not null;default:1"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PetModel) TableName() string {
	return "pets"
}

// GormPetRepository is the GORM-based implementation of PetRepository.
type GormPetRepository struct {
	db *gorm.DB
}

// NewGormPetRepository creates a new GormPetRepository.
func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

// FindByID retrieves a pet profile by its unique identifier.
func (r *GormPetRepository) FindByID(ctx context.Context, id uuid.UUID) (*petDomain.Pet, error) {
	var model PetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("pet", id.String())
		}
		return nil, fmt.Errorf("failed to find pet by ID: %w", err)
	}
	return toDomainPet(&model)
}

// FindActiveByOwnerID retrieves the active pet profiles for an owner.
func (r *GormPetRepository) FindActiveByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*petDomain.Pet, error) {
	var models []PetModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, string(petDomain.PetStatusActive)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find pets by owner: %w", err)
	}

	pets := make([]*petDomain.Pet, len(models))
	for i, m := range models {
		p, err := toDomainPet(&m)
		if err != nil {
			return nil, err
		}
		pets[i] = p
	}
	return pets, nil
}

// Save persists a new pet profile.
func (r *GormPetRepository) Save(ctx context.Context, pet *petDomain.Pet) error {
	model, err := toPetModel(pet)
	if err != nil {
		return fmt.Errorf("failed to convert pet to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save pet: %w", err)
	}
	return nil
}

// Update persists changes to an existing pet profile with optimistic locking.
func (r *GormPetRepository) Update(ctx context.Context, pet *petDomain.Pet) error {
	model, err := toPetModel(pet)
	if err != nil {
		return fmt.Errorf("failed to convert pet to model: %w", err)
	}

	expectedVersion := pet.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&PetModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"species":       model.Species,
			"breed":         model.Breed,
			"age_years":     model.AgeYears,
			"weight_kg":     model.WeightKg,
			"gender":        model.Gender,
			"color":         model.Color,
			"photo_urls":    model.PhotoURLs,
			"special_needs": model.SpecialNeeds,
			"vaccinated":    model.Vaccinated,
			"microchipped":  model.Microchipped,
			"medications":   model.Medications,
			"allergies":     model.Allergies,
			"vet_info":      model.VetInfo,
			"status":        model.Status,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update pet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("pet profile was modified by another request")
	}
	return nil
}

// --- Conversion Helpers ---

func toPetModel(p *petDomain.Pet) (*PetModel, error) {
	photos, err := json.Marshal(emptyIfNil(p.PhotoURLs()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photo URLs: %w", err)
	}
	medications, err := json.Marshal(emptyIfNil(p.Medications()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal medications: %w", err)
	}
	allergies, err := json.Marshal(emptyIfNil(p.Allergies()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal allergies: %w", err)
	}
	vetInfo, err := json.Marshal(p.VetInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vet info: %w", err)
	}

	return &PetModel{
		ID:           p.ID(),
		OwnerID:      p.OwnerID(),
		Name:         p.Name(),
		Species:      string(p.Species()),
		Breed:        p.Breed(),
		AgeYears:     p.AgeYears(),
		WeightKg:     p.WeightKg(),
		Gender:       string(p.Gender()),
		Color:        p.Color(),
		PhotoURLs:    photos,
		SpecialNeeds: p.SpecialNeeds(),
		Vaccinated:   p.Vaccinated(),
		Microchipped: p.Microchipped(),
		Medications:  medications,
		Allergies:    allergies,
		VetInfo:      vetInfo,
		Status:       string(p.Status()),
		Version:      p.Version(),
		CreatedAt:    p.CreatedAt(),
		UpdatedAt:    p.UpdatedAt(),
	}, nil
}

func toDomainPet(m *PetModel) (*petDomain.Pet, error) {
	var photos []string
	if err := unmarshalList(m.PhotoURLs, &photos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal photo URLs: %w", err)
	}
	var medications []string
	if err := unmarshalList(m.Medications, &medications); err != nil {
		return nil, fmt.Errorf("failed to unmarshal medications: %w", err)
	}
	var allergies []string
	if err := unmarshalList(m.Allergies, &allergies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allergies: %w", err)
	}
	var vetInfo petDomain.VetInfo
	if len(m.VetInfo) > 0 {
		if err := json.Unmarshal(m.VetInfo, &vetInfo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vet info: %w", err)
		}
	}

	return petDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		petDomain.Species(m.Species),
		m.Breed,
		m.AgeYears,
		m.WeightKg,
		petDomain.Gender(m.Gender),
		m.Color,
		photos,
		m.SpecialNeeds,
		m.Vaccinated,
		m.Microchipped,
		medications,
		allergies,
		vetInfo,
		petDomain.PetStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func unmarshalList(raw json.RawMessage, out *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
