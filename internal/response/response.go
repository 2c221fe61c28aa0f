package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawnest/service-marketplace/internal/domain"
)

// Envelope is the uniform response body: status is "success" for 2xx,
// "fail" for 4xx and "error" for 5xx.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Status: "success", Data: data})
}

// Message writes a 200 with a human-readable message and no payload.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Message: message})
}

// Paginated writes a 200 with a paginated payload.
func Paginated[T any](c *gin.Context, result domain.PaginatedResult[T]) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Data: result})
}

// BadRequest writes a 400 fail envelope.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Status: "fail", Message: message})
}

// Unauthorized writes a 401 fail envelope and aborts the request.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Status: "fail", Message: message})
}

// Forbidden writes a 403 fail envelope and aborts the request.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Envelope{Status: "fail", Message: message})
}

// Fail writes a fail envelope with an explicit status code.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{Status: "fail", Message: message})
}

// Error maps a domain error to its HTTP status as a fail envelope; anything
// untyped becomes a generic 500 error envelope without leaking internals.
func Error(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindInvalidTransition, domain.KindUpload:
		Fail(c, http.StatusBadRequest, err.Error())
	case domain.KindUnauthenticated:
		Fail(c, http.StatusUnauthorized, err.Error())
	case domain.KindForbidden:
		Fail(c, http.StatusForbidden, err.Error())
	case domain.KindNotFound:
		Fail(c, http.StatusNotFound, err.Error())
	case domain.KindConflict:
		Fail(c, http.StatusConflict, err.Error())
	default:
		InternalError(c, err)
	}
}

// InternalError attaches err to the context so the request logger records it,
// then aborts with the generic 500 error envelope.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
		Status:  "error",
		Message: "internal server error",
	})
}
