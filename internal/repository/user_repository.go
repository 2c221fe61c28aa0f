package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/identity"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null;size:100"`
	Email        string    `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string    `gorm:"not null;size:100"`
	Role         string    `gorm:"not null;size:10;index"`
	Phone        string    `gorm:"size:30"`
	Bio          string    `gorm:"size:1000"`
	Active       bool      `gorm:"not null;default:true"`
	Version      int64     `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves an account by its unique identifier.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByEmail retrieves an account by email, matched case-insensitively.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user", email)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return toDomainUser(&model), nil
}

// Save persists a new account, mapping a duplicate email to a conflict error.
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := toUserModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.NewConflictError("an account with this email already exists")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Update persists changes to an existing account with optimistic locking.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := toUserModel(user)

	expectedVersion := user.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"email":         model.Email,
			"password_hash": model.PasswordHash,
			"phone":         model.Phone,
			"bio":           model.Bio,
			"active":        model.Active,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("user was modified by another request")
	}
	return nil
}

// --- Conversion Helpers ---

func toUserModel(u *identity.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Name:         u.Name(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		Role:         string(u.Role()),
		Phone:        u.Phone(),
		Bio:          u.Bio(),
		Active:       u.IsActive(),
		Version:      u.Version(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

func toDomainUser(m *UserModel) *identity.User {
	return identity.Reconstruct(
		m.ID,
		m.Name,
		m.Email,
		m.PasswordHash,
		auth.Role(m.Role),
		m.Phone,
		m.Bio,
		m.Active,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
