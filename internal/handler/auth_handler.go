package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/middleware"
	"github.com/pawnest/service-marketplace/internal/response"
)

// AuthHandler exposes the account endpoints.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes wires the auth endpoints onto the router group.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/reactivate", h.Reactivate)
		auth.POST("/forgotPassword", h.ForgotPassword)

		auth.GET("/me", authRequired, h.Me)
		auth.PUT("/me", authRequired, h.UpdateProfile)
		auth.DELETE("/me", authRequired, h.Deactivate)
		auth.PUT("/password", authRequired, h.UpdatePassword)
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Reactivate handles POST /auth/reactivate.
func (h *AuthHandler) Reactivate(c *gin.Context) {
	var req application.ReactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := h.service.Reactivate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ForgotPassword handles POST /auth/forgotPassword. Email-based reset is not
// built yet; the endpoint exists so clients get a stable answer instead of a 404.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	response.BadRequest(c, "password reset is not yet available")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile handles PUT /auth/me.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req application.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// UpdatePassword handles PUT /auth/password.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req application.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.UpdatePassword(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "password updated")
}

// Deactivate handles DELETE /auth/me.
func (h *AuthHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "account deactivated")
}
