package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/domain/listing"
	"github.com/pawnest/service-marketplace/internal/domain/pet"
	"github.com/pawnest/service-marketplace/internal/middleware"
	"github.com/pawnest/service-marketplace/internal/response"
	"github.com/pawnest/service-marketplace/internal/storage"
)

// ListingHandler exposes the public listing search and the sitter-scoped
// listing management endpoints. Create and update accept multipart forms with
// up to five "images" files.
type ListingHandler struct {
	service *application.ListingService
	blobs   storage.BlobStore
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *application.ListingService, blobs storage.BlobStore) *ListingHandler {
	return &ListingHandler{service: service, blobs: blobs}
}

// RegisterRoutes wires the listing endpoints onto the router group. Search and
// detail are public (identity attached when a credential is present);
// everything else requires an authenticated sitter.
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup, optionalAuth, authRequired, sitterOnly gin.HandlerFunc) {
	services := rg.Group("/services")
	{
		services.GET("", optionalAuth, h.Search)
		services.GET("/my", authRequired, sitterOnly, h.MyListings)
		services.GET("/:id", optionalAuth, h.Get)

		services.POST("", authRequired, sitterOnly, h.Create)
		services.PUT("/:id", authRequired, sitterOnly, h.Update)
		services.DELETE("/:id", authRequired, sitterOnly, h.Delete)
		services.DELETE("/:id/images/:index", authRequired, sitterOnly, h.DeleteImage)
	}
}

// Search handles GET /services.
func (h *ListingHandler) Search(c *gin.Context) {
	filter := searchFilterFromQuery(c)
	page, limit := parsePagination(c)

	result, err := h.service.Search(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, *result)
}

// Get handles GET /services/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, l)
}

// MyListings handles GET /services/my.
func (h *ListingHandler) MyListings(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)

	listings, err := h.service.GetMyListings(c.Request.Context(), sitterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listings)
}

// Create handles POST /services.
func (h *ListingHandler) Create(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)

	images, err := collectUploads(c, h.blobs, "images")
	if err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.service.CreateListing(c.Request.Context(), sitterID, listingFieldsFromForm(c), images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, l)
}

// Update handles PUT /services/:id. Uploaded images are appended unless the
// replace_images form flag is set, in which case they replace the list.
func (h *ListingHandler) Update(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)
	listingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	images, err := collectUploads(c, h.blobs, "images")
	if err != nil {
		response.Error(c, err)
		return
	}

	replace := false
	if v := formBool(c, "replace_images"); v != nil {
		replace = *v
	}

	l, err := h.service.UpdateListing(c.Request.Context(), sitterID, listingID, listingFieldsFromForm(c), images, replace)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, l)
}

// Delete handles DELETE /services/:id.
func (h *ListingHandler) Delete(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)
	listingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), sitterID, listingID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "service listing deleted")
}

// DeleteImage handles DELETE /services/:id/images/:index.
func (h *ListingHandler) DeleteImage(c *gin.Context) {
	sitterID, _ := middleware.GetUserID(c)
	listingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	index, err := parseIndexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.service.DeleteImage(c.Request.Context(), sitterID, listingID, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, l)
}

// searchFilterFromQuery builds the search filter from query parameters,
// ignoring values that do not parse.
func searchFilterFromQuery(c *gin.Context) listing.SearchFilter {
	text := c.Query("query")
	if text == "" {
		text = c.Query("q")
	}
	filter := listing.SearchFilter{
		City:  c.Query("city"),
		Query: text,
		Sort:  listing.SortOrder(c.DefaultQuery("sort", string(listing.SortNewest))),
	}
	if v := c.Query("service_type"); v != "" {
		t := listing.ServiceType(strings.ToLower(v))
		filter.ServiceType = &t
	}
	if v := c.Query("pet_type"); v != "" {
		s := pet.Species(strings.ToLower(v))
		filter.PetType = &s
	}
	if v := c.Query("min_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.MinPrice = &d
		}
	}
	if v := c.Query("max_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.MaxPrice = &d
		}
	}
	if v := c.Query("min_rating"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.MinRating = &d
		}
	}
	return filter
}
