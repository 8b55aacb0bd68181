package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes caps uploaded images at 5 MiB.
const MaxImageBytes = 5 * 1024 * 1024

var (
	// ErrMissingFile indicates the multipart form carried no image field.
	ErrMissingFile = errors.New("upload: image file required")
	// ErrFileTooLarge indicates the image exceeds MaxImageBytes.
	ErrFileTooLarge = errors.New("upload: image exceeds 5MB limit")
	// ErrUnsupportedType indicates a content type outside the allowlist.
	ErrUnsupportedType = errors.New("upload: only JPEG, PNG, GIF and WebP are supported")
)

// extensionsByType maps the sniffed content type to the stored extension.
// The client-declared header is ignored.
var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ServiceConfig describes where uploads are written and how they are served.
type ServiceConfig struct {
	Dir     string
	BaseURL string
}

// Service stores uploaded meme images on the local filesystem.
type Service struct {
	dir     string
	baseURL string
}

// NewService constructs the upload service.
func NewService(cfg ServiceConfig) (*Service, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("upload: directory required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "/uploads/memes"
	}
	return &Service{dir: dir, baseURL: baseURL}, nil
}

// SaveImage validates and persists the uploaded image, returning its public
// URL path.
func (s *Service) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", ErrMissingFile
	}
	if fileHeader.Size > MaxImageBytes {
		return "", ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	// Read one extra byte past the limit so an understated Size header
	// cannot smuggle an oversized body through.
	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrMissingFile
	}
	if len(data) > MaxImageBytes {
		return "", ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	extension, ok := extensionsByType[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	filename := id.String() + extension

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", err
	}
	return path.Join(s.baseURL, filename), nil
}
