// pkg/utils/validation/media.go
package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
)

var (
	ErrFileSize     = errors.New("file size exceeds limit")
	ErrFileType     = errors.New("invalid file type")
	ErrFileRequired = errors.New("no file provided")
)

// ValidateImage accepts any image/* upload up to maxSize bytes.
func ValidateImage(file *multipart.FileHeader, maxSize int64) error {
	return validateMedia(file, "image/", maxSize)
}

// ValidateVideo accepts any video/* upload up to maxSize bytes.
func ValidateVideo(file *multipart.FileHeader, maxSize int64) error {
	return validateMedia(file, "video/", maxSize)
}

func validateMedia(file *multipart.FileHeader, prefix string, maxSize int64) error {
	if file == nil {
		return ErrFileRequired
	}

	if file.Size > maxSize {
		return fmt.Errorf("%w: %s is larger than %dMB", ErrFileSize, file.Filename, maxSize/(1024*1024))
	}

	if !strings.HasPrefix(ContentType(file), prefix) {
		return fmt.Errorf("%w: %s must be %s*", ErrFileType, file.Filename, prefix)
	}

	return nil
}

// ContentType returns the declared part content type, lower-cased.
func ContentType(file *multipart.FileHeader) string {
	return strings.ToLower(strings.TrimSpace(file.Header.Get("Content-Type")))
}
