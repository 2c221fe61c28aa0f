package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnest/service-marketplace/internal/domain"
)

func errorContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestErrorMapsDomainKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", domain.NewValidationError("bad input"), http.StatusBadRequest},
		{"invalid transition", domain.NewInvalidStateError("pending", "completed"), http.StatusBadRequest},
		{"upload", domain.NewUploadError("too many files"), http.StatusBadRequest},
		{"unauthenticated", domain.NewUnauthorizedError("bad credentials"), http.StatusUnauthorized},
		{"forbidden", domain.NewForbiddenError("wrong role"), http.StatusForbidden},
		{"not found", domain.NewNotFoundError("pet", "123"), http.StatusNotFound},
		{"conflict", domain.NewConflictError("slot taken"), http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := errorContext(t)
			Error(c, tc.err)

			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"fail"`)
			assert.Contains(t, rec.Body.String(), tc.err.Error())
		})
	}
}

func TestErrorKeepsUntypedErrorsForTheLogger(t *testing.T) {
	c, rec := errorContext(t)
	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	// The original error must survive on the context for the request logger.
	require.Len(t, c.Errors, 1)
	assert.EqualError(t, c.Errors[0], "pq: connection refused")
}

func TestInternalErrorAborts(t *testing.T) {
	c, rec := errorContext(t)
	InternalError(c, errors.New("boom"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
