package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pawnest/service-marketplace/internal/domain"
	"github.com/pawnest/service-marketplace/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	maxUploadFiles = 5
	maxUploadBytes = 5 << 20
)

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// parsePagination reads page/limit query parameters with sane bounds.
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// parseIDParam parses a UUID path parameter.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// parseIndexParam parses a non-negative integer path parameter.
func parseIndexParam(c *gin.Context, name string) (int, error) {
	idx, err := strconv.Atoi(c.Param(name))
	if err != nil || idx < 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return idx, nil
}

func validateUpload(file *multipart.FileHeader) error {
	if file.Size > maxUploadBytes {
		return domain.NewUploadError(fmt.Sprintf("%s exceeds the %dMB upload limit", file.Filename, maxUploadBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return domain.NewUploadError(fmt.Sprintf("%s is not a supported image type", file.Filename))
	}
	return nil
}

// collectUploads validates and stores the multipart files under the given
// field, returning their URLs. A non-multipart request yields no uploads. On
// failure any blobs already stored are evicted.
func collectUploads(c *gin.Context, blobs storage.BlobStore, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, domain.NewUploadError("malformed multipart form")
	}

	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > maxUploadFiles {
		return nil, domain.NewUploadError(fmt.Sprintf("at most %d files can be uploaded at once", maxUploadFiles))
	}

	for _, file := range files {
		if err := validateUpload(file); err != nil {
			return nil, err
		}
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := blobs.Save(c.Request.Context(), file)
		if err != nil {
			for _, stored := range urls {
				_ = blobs.Remove(c.Request.Context(), stored)
			}
			return nil, domain.NewUploadError("failed to store uploaded file")
		}
		urls = append(urls, url)
	}
	return urls, nil
}
