package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
)

const jpegQuality = 85

// Process decodes an uploaded image and re-encodes it in its own format,
// dropping metadata and recompressing jpeg/webp at quality 85.
func Process(data []byte) (*bytes.Buffer, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %w", err)
	}

	buf := new(bytes.Buffer)

	switch format {
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(buf, img)
	case "webp":
		err = webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: jpegQuality})
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}

	if err != nil {
		return nil, "", fmt.Errorf("could not encode image: %w", err)
	}

	return buf, "image/" + format, nil
}

// Optimize returns the processed image, or the original bytes and content
// type when the format cannot be re-encoded here (gif, heic, ...).
func Optimize(data []byte, contentType string) ([]byte, string) {
	buf, processedType, err := Process(data)
	if err != nil || buf.Len() == 0 {
		return data, contentType
	}
	return buf.Bytes(), processedType
}
