package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/identity"
)

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=owner sitter"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest holds the mutable profile fields.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

// UpdatePasswordRequest holds a password change with re-proof of the current one.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ReactivateRequest holds the credentials to restore a deactivated account.
type ReactivateRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserDTO is the outward representation of an account. The password hash is
// deliberately absent.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse pairs a fresh token with the account it belongs to.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// AuthService implements account registration, login and profile use cases.
type AuthService struct {
	users  identity.UserRepository
	tokens *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users identity.UserRepository, tokens *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := identity.NewUser(req.Name, req.Email, hash, auth.Role(req.Role), req.Phone, req.Bio)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, user.Email()); err == nil {
		return nil, domain.NewConflictError("an account with this email already exists")
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("user_id", user.ID().String()),
		zap.String("role", string(user.Role())),
	)
	return s.authResponse(user)
}

// Login verifies credentials and returns the account with a fresh token.
// Deactivated accounts cannot log in; they must use Reactivate.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	if !auth.CheckPassword(user.PasswordHash(), req.Password) {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	if !user.IsActive() {
		return nil, domain.NewUnauthorizedError("account is deactivated")
	}
	return s.authResponse(user)
}

// GetProfile returns the account behind an authenticated request.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// UpdateProfile applies partial updates to the caller's profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.UpdateProfile(req.Name, req.Phone, req.Bio)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// UpdatePassword changes the caller's password after re-proving the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, req UpdatePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash(), req.CurrentPassword) {
		return domain.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.ChangePassword(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password updated", zap.String("user_id", userID.String()))
	return nil
}

// Deactivate soft-deletes the caller's account.
func (s *AuthService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive() {
		return nil
	}

	user.Deactivate()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("account deactivated", zap.String("user_id", userID.String()))
	return nil
}

// Reactivate restores a deactivated account after re-proving the password and
// returns a fresh token. An email without a deactivated account behind it is
// reported as not found.
func (s *AuthService) Reactivate(ctx context.Context, req ReactivateRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil || user.IsActive() {
		return nil, domain.NewNotFoundError("deactivated account", req.Email)
	}
	if !auth.CheckPassword(user.PasswordHash(), req.Password) {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}

	user.Reactivate()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account reactivated", zap.String("user_id", user.ID().String()))
	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *identity.User) (*AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID(), user.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: toUserDTO(user)}, nil
}

func toUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		Phone:     u.Phone(),
		Bio:       u.Bio(),
		Active:    u.IsActive(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}
