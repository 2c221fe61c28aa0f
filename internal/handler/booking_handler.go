package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/domain/booking"
	"github.com/pawnest/service-marketplace/internal/middleware"
	"github.com/pawnest/service-marketplace/internal/response"
	"github.com/pawnest/service-marketplace/internal/storage"
)

// BookingHandler exposes the booking lifecycle endpoints. Check-in, check-out
// and progress updates accept multipart forms so the sitter can attach photos.
type BookingHandler struct {
	service *application.BookingService
	blobs   storage.BlobStore
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, blobs storage.BlobStore) *BookingHandler {
	return &BookingHandler{service: service, blobs: blobs}
}

// RegisterRoutes wires the booking endpoints onto the router group.
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired, ownerOnly, sitterOnly gin.HandlerFunc) {
	bookings := rg.Group("/bookings", authRequired)
	{
		bookings.POST("", ownerOnly, h.Create)
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.PATCH("/:id/status", h.ChangeStatus)

		bookings.POST("/:id/checkin", sitterOnly, h.CheckIn)
		bookings.POST("/:id/checkout", sitterOnly, h.CheckOut)
		bookings.POST("/:id/updates", sitterOnly, h.AddUpdate)
	}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

// List handles GET /bookings: owners see the bookings they placed, sitters
// see their work calendar.
func (h *BookingHandler) List(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	page, limit := parsePagination(c)

	result, err := h.service.GetBookings(c.Request.Context(), callerID, role, listFilterFromQuery(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, *result)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), callerID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// ChangeStatus handles PATCH /bookings/:id/status.
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req application.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	b, err := h.service.ChangeStatus(c.Request.Context(), callerID, role, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// CheckIn handles POST /bookings/:id/checkin.
func (h *BookingHandler) CheckIn(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	photos, err := collectUploads(c, h.blobs, "photos")
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), sitterID, bookingID, application.CheckRequest{
		Notes:  c.PostForm("notes"),
		Photos: photos,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// CheckOut handles POST /bookings/:id/checkout.
func (h *BookingHandler) CheckOut(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	photos, err := collectUploads(c, h.blobs, "photos")
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.CheckOut(c.Request.Context(), sitterID, bookingID, application.CheckRequest{
		Notes:  c.PostForm("notes"),
		Photos: photos,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// AddUpdate handles POST /bookings/:id/updates.
func (h *BookingHandler) AddUpdate(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	photos, err := collectUploads(c, h.blobs, "photos")
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.AddUpdate(c.Request.Context(), sitterID, bookingID, application.AddUpdateRequest{
		Message: c.PostForm("message"),
		Photos:  photos,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// listFilterFromQuery builds the booking list filter from query parameters,
// ignoring values that do not parse.
func listFilterFromQuery(c *gin.Context) booking.ListFilter {
	var filter booking.ListFilter
	if v := c.Query("status"); v != "" {
		if status, err := booking.ParseStatus(strings.ToLower(v)); err == nil {
			filter.Status = &status
		}
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}
	return filter
}
