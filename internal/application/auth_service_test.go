package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, tokens, zap.NewNop()), users
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Name:     "Sam",
		Email:    "Sam@Example.com",
		Password: "correct-horse",
		Role:     "owner",
	}
}

func TestRegisterIssuesTokenAndNormalizesEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	res, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "sam@example.com", res.User.Email)
	assert.Equal(t, "owner", res.User.Role)
	assert.True(t, res.User.Active)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Email = "SAM@example.com"
	_, err = service.Register(context.Background(), req)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestLogin(t *testing.T) {
	service, _ := newAuthFixture(t)
	_, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)

	res, err := service.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = service.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "wrong"})
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	_, err = service.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))
}

func TestDeactivateBlocksLoginUntilReactivated(t *testing.T) {
	service, _ := newAuthFixture(t)
	res, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)

	require.NoError(t, service.Deactivate(context.Background(), res.User.ID))
	// Repeating is a no-op.
	require.NoError(t, service.Deactivate(context.Background(), res.User.ID))

	_, err = service.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "correct-horse"})
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	restored, err := service.Reactivate(context.Background(), ReactivateRequest{Email: "sam@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, restored.User.Active)
	assert.NotEmpty(t, restored.Token)

	_, err = service.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "correct-horse"})
	assert.NoError(t, err)
}

func TestReactivateRequiresDeactivatedAccount(t *testing.T) {
	service, _ := newAuthFixture(t)
	res, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)

	// Active account: nothing to reactivate.
	_, err = service.Reactivate(context.Background(), ReactivateRequest{Email: "sam@example.com", Password: "correct-horse"})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	require.NoError(t, service.Deactivate(context.Background(), res.User.ID))

	_, err = service.Reactivate(context.Background(), ReactivateRequest{Email: "sam@example.com", Password: "wrong"})
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	_, err = service.Reactivate(context.Background(), ReactivateRequest{Email: "ghost@example.com", Password: "x"})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	service, _ := newAuthFixture(t)
	res, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)

	err = service.UpdatePassword(context.Background(), res.User.ID, UpdatePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password-1",
	})
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	err = service.UpdatePassword(context.Background(), res.User.ID, UpdatePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "new-password-1",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "new-password-1"})
	assert.NoError(t, err)
	_, err = service.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "correct-horse"})
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	service, _ := newAuthFixture(t)
	res, err := service.Register(context.Background(), registerReq())
	require.NoError(t, err)

	updated, err := service.UpdateProfile(context.Background(), res.User.ID, UpdateProfileRequest{
		Phone: "555-0100",
		Bio:   "two corgis",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", updated.Name)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "two corgis", updated.Bio)
}
