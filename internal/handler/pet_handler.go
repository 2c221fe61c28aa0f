package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/middleware"
	"github.com/pawnest/service-marketplace/internal/response"
	"github.com/pawnest/service-marketplace/internal/storage"
)

// PetHandler exposes the owner-scoped pet profile endpoints. Create and update
// accept multipart forms with up to five "photos" files.
type PetHandler struct {
	service *application.PetService
	blobs   storage.BlobStore
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(service *application.PetService, blobs storage.BlobStore) *PetHandler {
	return &PetHandler{service: service, blobs: blobs}
}

// RegisterRoutes wires the pet endpoints onto the router group. All routes
// require an authenticated owner.
func (h *PetHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired, ownerOnly gin.HandlerFunc) {
	pets := rg.Group("/pets", authRequired, ownerOnly)
	{
		pets.POST("", h.Create)
		pets.GET("", h.List)
		pets.GET("/:id", h.Get)
		pets.PUT("/:id", h.Update)
		pets.DELETE("/:id", h.Delete)
		pets.DELETE("/:id/photos/:index", h.DeletePhoto)
	}
}

// Create handles POST /pets.
func (h *PetHandler) Create(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	photos, err := collectUploads(c, h.blobs, "photos")
	if err != nil {
		response.Error(c, err)
		return
	}

	pet, err := h.service.CreatePet(c.Request.Context(), ownerID, petFieldsFromForm(c), photos)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pet)
}

// List handles GET /pets.
func (h *PetHandler) List(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	pets, err := h.service.GetPets(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pets)
}

// Get handles GET /pets/:id.
func (h *PetHandler) Get(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	petID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	pet, err := h.service.GetPet(c.Request.Context(), ownerID, petID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pet)
}

// Update handles PUT /pets/:id. Uploaded photos are appended unless the
// replace_photos form flag is set, in which case they replace the list.
func (h *PetHandler) Update(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	petID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	photos, err := collectUploads(c, h.blobs, "photos")
	if err != nil {
		response.Error(c, err)
		return
	}

	replace := false
	if v := formBool(c, "replace_photos"); v != nil {
		replace = *v
	}

	pet, err := h.service.UpdatePet(c.Request.Context(), ownerID, petID, petFieldsFromForm(c), photos, replace)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pet)
}

// Delete handles DELETE /pets/:id.
func (h *PetHandler) Delete(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	petID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeletePet(c.Request.Context(), ownerID, petID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "pet profile deleted")
}

// DeletePhoto handles DELETE /pets/:id/photos/:index.
func (h *PetHandler) DeletePhoto(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	petID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	index, err := parseIndexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}

	pet, err := h.service.DeletePhoto(c.Request.Context(), ownerID, petID, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pet)
}
