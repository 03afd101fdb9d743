package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

// allowedImageExts is the fixed set of raster formats accepted for pet images.
var allowedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// ImageStore persists uploaded pet images on disk and hands out public references.
type ImageStore struct {
	baseDir      string
	publicPrefix string
	maxSizeBytes int64
}

// NewImageStore ensures the upload directory exists and returns a handle.
func NewImageStore(baseDir, publicPrefix string, maxSizeBytes int64) (*ImageStore, error) {
	if baseDir == "" {
		baseDir = "./static/uploads"
	}
	if publicPrefix == "" {
		publicPrefix = "/static/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &ImageStore{baseDir: baseDir, publicPrefix: strings.TrimRight(publicPrefix, "/"), maxSizeBytes: maxSizeBytes}, nil
}

// Store writes the image bytes under a collision-free name derived from the
// declared filename and returns the public reference for the stored file.
func (s *ImageStore) Store(declaredFilename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(declaredFilename))
	if _, ok := allowedImageExts[ext]; !ok {
		return "", appErrors.Clone(appErrors.ErrUnsupportedMedia, "allowed image types: png, jpg, jpeg, gif, webp")
	}
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds maximum size of %d bytes", s.maxSizeBytes))
	}

	base := sanitizeBase(strings.TrimSuffix(filepath.Base(declaredFilename), filepath.Ext(declaredFilename)))
	name := fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)

	if err := os.WriteFile(filepath.Join(s.baseDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.publicPrefix + "/" + name, nil
}

// Delete removes a previously stored image by its public reference. References
// outside the store's prefix are ignored so external URLs are never touched.
func (s *ImageStore) Delete(reference string) error {
	if reference == "" || !strings.HasPrefix(reference, s.publicPrefix+"/") {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(reference, s.publicPrefix+"/"))
	if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir exposes the underlying directory so the router can serve it statically.
func (s *ImageStore) Dir() string {
	return s.baseDir
}

// PublicPrefix returns the URL prefix stored references begin with.
func (s *ImageStore) PublicPrefix() string {
	return s.publicPrefix
}

func sanitizeBase(base string) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
