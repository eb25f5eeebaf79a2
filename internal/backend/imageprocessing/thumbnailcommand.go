package imageprocessing

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/goimagesearch/internal/model"
	"golang.org/x/image/draw"
)

// ThumbnailCommand scales an image down to a fixed width preserving the aspect
// ratio. The output keeps the encoding of the input.
type ThumbnailCommand struct {
	width int
}

// NewThumbnailCommand creates a thumbnail command for the given target width
func NewThumbnailCommand(width int) (*ThumbnailCommand, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	return &ThumbnailCommand{width: width}, nil
}

// Execute scales the image to the target width
func (c *ThumbnailCommand) Execute(imageData []byte) ([]byte, error) {
	imageType, err := DetectImageType(imageData)
	if err != nil {
		return nil, err
	}

	img, err := decode(imageData)
	if err != nil {
		slog.Error("ThumbnailCommand: failed to decode image", "error", err)
		return nil, err
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	// Images already small enough are kept as they are
	if originalWidth <= c.width {
		slog.Debug("ThumbnailCommand: no scaling needed",
			"original_width", originalWidth,
			"target_width", c.width)
		return imageData, nil
	}

	targetHeight := originalHeight * c.width / originalWidth
	if targetHeight < 1 {
		targetHeight = 1
	}

	slog.Debug("ThumbnailCommand: scaling image",
		"original_width", originalWidth,
		"original_height", originalHeight,
		"target_width", c.width,
		"target_height", targetHeight)

	target := image.NewRGBA(image.Rect(0, 0, c.width, targetHeight))
	draw.CatmullRom.Scale(target, target.Bounds(), img, bounds, draw.Over, nil)

	thumbnail, err := encode(target, imageType)
	if err != nil {
		slog.Error("ThumbnailCommand: failed to encode thumbnail", "error", err)
		return nil, err
	}

	slog.Debug("ThumbnailCommand: scaling complete",
		"input_size_bytes", len(imageData),
		"output_size_bytes", len(thumbnail))

	return thumbnail, nil
}

// CheckRegion verifies the region has a positive size and lies within the image.
func CheckRegion(imageData []byte, region model.ImageRegion) error {
	width, height, err := Dimensions(imageData)
	if err != nil {
		return err
	}
	if region.Width <= 0 || region.Height <= 0 {
		return fmt.Errorf("region must have a positive size, got %dx%d", region.Width, region.Height)
	}
	// compared against the remaining space so large offsets cannot overflow
	if region.X < 0 || region.Y < 0 || region.Width > width-region.X || region.Height > height-region.Y {
		return fmt.Errorf("region (x=%d, y=%d, width=%d, height=%d) exceeds image bounds %dx%d",
			region.X, region.Y, region.Width, region.Height, width, height)
	}
	return nil
}
