package imageprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/jo-hoe/goimagesearch/internal/model"
)

// ErrUnsupportedImage is returned for data that is not a decodable JPEG or PNG image.
var ErrUnsupportedImage = errors.New("unsupported image")

// ErrImageTooLarge is returned when the header declares more pixels than MaxImagePixels.
var ErrImageTooLarge = fmt.Errorf("%w: image too large", ErrUnsupportedImage)

const (
	jpegQuality = 90

	// MaxImagePixels bounds the decoded size of an upload, 40 megapixels.
	MaxImagePixels = 40_000_000
)

// DetectImageType reads the image header and returns the matching image type.
func DetectImageType(imageData []byte) (model.ImageType, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if err := checkPixels(config); err != nil {
		return "", err
	}
	switch format {
	case "jpeg":
		return model.ImageTypeJPEG, nil
	case "png":
		return model.ImageTypePNG, nil
	}
	return "", fmt.Errorf("%w: format %s", ErrUnsupportedImage, format)
}

// Dimensions returns the width and height of the encoded image.
func Dimensions(imageData []byte) (int, int, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return config.Width, config.Height, nil
}

// checkPixels rejects images whose declared dimensions exceed MaxImagePixels.
func checkPixels(config image.Config) error {
	if config.Width <= 0 || config.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, config.Width, config.Height)
	}
	if config.Width > MaxImagePixels/config.Height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, config.Width, config.Height, MaxImagePixels)
	}
	return nil
}

func decode(imageData []byte) (image.Image, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if err := checkPixels(config); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

func encode(img image.Image, imageType model.ImageType) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch imageType {
	case model.ImageTypeJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case model.ImageTypePNG:
		err = png.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("%w: cannot encode image type %q", ErrUnsupportedImage, imageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", imageType, err)
	}
	return buf.Bytes(), nil
}
