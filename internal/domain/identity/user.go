package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
)

// User is the aggregate root for a marketplace account, either a pet owner
// or a care provider (sitter).
type User struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	role         auth.Role
	phone        string
	bio          string
	active       bool
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a new active account. The email is normalized to lower case;
// the password hash must already be computed by the caller.
func NewUser(name, email, passwordHash string, role auth.Role, phone, bio string) (*User, error) {
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("role must be owner or sitter")
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		phone:        phone,
		bio:          bio,
		active:       true,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, email, passwordHash string,
	role auth.Role,
	phone, bio string,
	active bool,
	version int64,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		phone:        phone,
		bio:          bio,
		active:       active,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() auth.Role      { return u.role }
func (u *User) Phone() string        { return u.phone }
func (u *User) Bio() string          { return u.bio }
func (u *User) IsActive() bool       { return u.active }
func (u *User) Version() int64       { return u.version }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// IsOwner reports whether the account has the pet-owner role.
func (u *User) IsOwner() bool { return u.role == auth.RoleOwner }

// IsSitter reports whether the account has the care-provider role.
func (u *User) IsSitter() bool { return u.role == auth.RoleSitter }

// --- Behavior ---

// UpdateProfile applies partial updates to the mutable profile fields.
func (u *User) UpdateProfile(name, phone, bio string) {
	if name != "" {
		u.name = name
	}
	if phone != "" {
		u.phone = phone
	}
	if bio != "" {
		u.bio = bio
	}
	u.version++
	u.updatedAt = time.Now().UTC()
}

// ChangePassword replaces the stored password hash.
func (u *User) ChangePassword(newHash string) {
	u.passwordHash = newHash
	u.version++
	u.updatedAt = time.Now().UTC()
}

// Deactivate soft-deletes the account. Deactivating an already inactive
// account is a no-op.
func (u *User) Deactivate() {
	if !u.active {
		return
	}
	u.active = false
	u.version++
	u.updatedAt = time.Now().UTC()
}

// Reactivate restores a deactivated account. Callers must re-prove the
// password before invoking this.
func (u *User) Reactivate() {
	if u.active {
		return
	}
	u.active = true
	u.version++
	u.updatedAt = time.Now().UTC()
}
