package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// urlPrefix is the path under which the upload directory is served.
const urlPrefix = "/uploads/"

// LocalStore is a BlobStore backed by a directory on local disk, served
// statically by the HTTP server.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStore creates the upload directory if needed and returns a store
// writing into it. baseURL may be empty for relative URLs.
func NewLocalStore(dir, baseURL string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}, nil
}

// Dir returns the directory blobs are written to, for static serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the uploaded file under a timestamped name and returns its URL.
func (s *LocalStore) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	name := fmt.Sprintf("%d-%s%s",
		time.Now().UTC().UnixNano(),
		uuid.NewString()[:8],
		strings.ToLower(filepath.Ext(file.Filename)),
	)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return s.baseURL + urlPrefix + name, nil
}

// Remove deletes the blob behind the URL. Failures are logged and swallowed so
// eviction never fails the surrounding request.
func (s *LocalStore) Remove(_ context.Context, url string) error {
	idx := strings.LastIndex(url, urlPrefix)
	if idx < 0 {
		s.logger.Warn("refusing to evict blob with unrecognized URL", zap.String("url", url))
		return nil
	}
	name := filepath.Base(url[idx+len(urlPrefix):])

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to evict blob", zap.String("url", url), zap.Error(err))
	}
	return nil
}
