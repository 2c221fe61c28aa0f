package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/domain/identity"
)

type stubResolver struct {
	user *identity.User
	err  error
}

func (s *stubResolver) FindByID(context.Context, uuid.UUID) (*identity.User, error) {
	return s.user, s.err
}

func protectedRouter(users IdentityResolver, jwtManager *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(jwtManager, users), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthRejectsStaleToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(uuid.New(), auth.RoleOwner)
	require.NoError(t, err)

	router := protectedRouter(&stubResolver{err: domain.NewNotFoundError("user", "gone")}, jwtManager)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bearerRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fail"`)
}

func TestAuthSurfacesStoreFailures(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(uuid.New(), auth.RoleOwner)
	require.NoError(t, err)

	router := protectedRouter(&stubResolver{err: errors.New("dial tcp: connection refused")}, jwtManager)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bearerRequest(token))

	// A store outage is not a credential problem.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestAuthRejectsDeactivatedAccount(t *testing.T) {
	user, err := identity.NewUser("Olive Owner", "olive@example.com", "hashed", auth.RoleOwner, "", "")
	require.NoError(t, err)
	user.Deactivate()

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(user.ID(), auth.RoleOwner)
	require.NoError(t, err)

	router := protectedRouter(&stubResolver{user: user}, jwtManager)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bearerRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMissingCredential(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := protectedRouter(&stubResolver{}, jwtManager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
