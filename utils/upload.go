package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxUploadMemory bounds the in-memory part of a multipart form.
const MaxUploadMemory = 10 << 20

var (
	ErrNoImage      = errors.New("no image found")
	ErrInvalidImage = errors.New("only images can be uploaded (jpeg/jpg/png)")
)

// SaveImage stores the image sent in the multipart field under dir/sub and
// returns its path. The request form must already be parsed.
func SaveImage(r *http.Request, field, dir, sub string) (string, error) {
	file, handler, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrNoImage
		}
		return "", fmt.Errorf("failed to retrieve file: %w", err)
	}
	defer file.Close()

	if !IsValidImageType(handler.Header.Get("Content-Type")) {
		return "", ErrInvalidImage
	}

	uploadPath := filepath.Join(dir, sub)
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(handler.Filename))
	filePath := filepath.Join(uploadPath, filename)
	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return filepath.ToSlash(filePath), nil
}
