package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"

	imgproc "diyari_backend/pkg/utils/image"
	"diyari_backend/pkg/utils/storage"
	"diyari_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

// uploadError carries the status and message an upload failure maps to.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

func respondUpload(c *fiber.Ctx, err error) error {
	var ue *uploadError
	if errors.As(err, &ue) {
		return errorJSON(c, ue.status, ue.msg)
	}
	return errorJSON(c, fiber.StatusInternalServerError, "Could not save media")
}

func mediaError(err error) error {
	switch {
	case errors.Is(err, validation.ErrFileType):
		return &uploadError{fiber.StatusBadRequest, "Only image and video files are allowed!"}
	case errors.Is(err, validation.ErrFileSize):
		return &uploadError{fiber.StatusBadRequest, err.Error()}
	case errors.Is(err, validation.ErrFileRequired):
		return &uploadError{fiber.StatusBadRequest, "No file uploaded"}
	}
	return err
}

// listingMedia returns the images and video parts of a multipart request.
// Non-multipart requests carry no media.
func listingMedia(c *fiber.Ctx) (images, videos []*multipart.FileHeader, err error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil
	}
	images = form.File["images"]
	videos = form.File["video"]

	if len(images) > uploads.MaxImages {
		return nil, nil, &uploadError{fiber.StatusBadRequest, fmt.Sprintf("Maximum %d images allowed", uploads.MaxImages)}
	}
	if len(videos) > 1 {
		return nil, nil, &uploadError{fiber.StatusBadRequest, "Only one video allowed"}
	}
	for _, fh := range images {
		if err := validation.ValidateImage(fh, uploads.MaxImageSize); err != nil {
			return nil, nil, mediaError(err)
		}
	}
	for _, fh := range videos {
		if err := validation.ValidateVideo(fh, uploads.MaxVideoSize); err != nil {
			return nil, nil, mediaError(err)
		}
	}
	return images, videos, nil
}

func mediaStorage() (storage.Storage, error) {
	if storage.Default == nil {
		return nil, &uploadError{fiber.StatusServiceUnavailable, "File storage is not configured"}
	}
	return storage.Default, nil
}

// saveImage re-encodes the image when it can and stores it under
// owner/kind.
func saveImage(ctx context.Context, owner, kind string, fh *multipart.FileHeader) (string, error) {
	store, err := mediaStorage()
	if err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", fh.Filename, err)
	}
	data, contentType := imgproc.Optimize(data, validation.ContentType(fh))

	return store.Save(ctx, storage.ObjectKey(owner, kind, fh.Filename), bytes.NewReader(data), contentType)
}

func saveVideo(ctx context.Context, owner string, fh *multipart.FileHeader) (string, error) {
	store, err := mediaStorage()
	if err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return store.Save(ctx, storage.ObjectKey(owner, "videos", fh.Filename), f, validation.ContentType(fh))
}

// saveListingMedia stores every part or none: on failure the parts already
// written are removed again.
func saveListingMedia(ctx context.Context, owner string, images, videos []*multipart.FileHeader) ([]string, string, error) {
	var saved []string
	imageURLs := make([]string, 0, len(images))

	for _, fh := range images {
		url, err := saveImage(ctx, owner, "images", fh)
		if err != nil {
			removeMedia(ctx, saved)
			return nil, "", err
		}
		saved = append(saved, url)
		imageURLs = append(imageURLs, url)
	}

	var videoURL string
	for _, fh := range videos {
		url, err := saveVideo(ctx, owner, fh)
		if err != nil {
			removeMedia(ctx, saved)
			return nil, "", err
		}
		videoURL = url
	}

	return imageURLs, videoURL, nil
}

// removeMedia is best effort; failures are only logged.
func removeMedia(ctx context.Context, urls []string) {
	if len(urls) == 0 || storage.Default == nil {
		return
	}
	if err := storage.DeleteAll(ctx, storage.Default, urls); err != nil {
		log.Printf("Error removing media: %v", err)
	}
}
