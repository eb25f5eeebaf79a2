package imageprocessing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/jo-hoe/goimagesearch/internal/model"
)

// createTestPNG creates a test PNG image with the given dimensions
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// createOversizedPNG returns a small PNG whose header declares width x height pixels.
func createOversizedPNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := createTestPNG(t, 4, 4)
	// IHDR data starts after the 8 byte signature, the chunk length and the chunk type
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDetectImageType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected model.ImageType
	}{
		{"PNG", createTestPNG(t, 4, 4), model.ImageTypePNG},
		{"JPEG", createTestJPEG(t, 4, 4), model.ImageTypeJPEG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectImageType(tt.data)
			if err != nil {
				t.Fatalf("DetectImageType error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDetectImageType_Invalid(t *testing.T) {
	_, err := DetectImageType([]byte("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestDetectImageType_TooLarge(t *testing.T) {
	_, err := DetectImageType(createOversizedPNG(t, 20000, 20000))
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrImageTooLarge to match ErrUnsupportedImage, got %v", err)
	}
}

func TestDetectImageType_LargestAllowed(t *testing.T) {
	imageType, err := DetectImageType(createOversizedPNG(t, 8000, 5000))
	if err != nil {
		t.Fatalf("expected an image of exactly MaxImagePixels to be accepted, got %v", err)
	}
	if imageType != model.ImageTypePNG {
		t.Errorf("expected png, got %s", imageType)
	}
}

func TestThumbnailCommand_TooLarge(t *testing.T) {
	command, err := NewThumbnailCommand(20)
	if err != nil {
		t.Fatalf("NewThumbnailCommand error: %v", err)
	}
	if _, err := command.Execute(createOversizedPNG(t, 100000, 100000)); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestNewThumbnailCommand_InvalidWidth(t *testing.T) {
	for _, width := range []int{0, -10} {
		if _, err := NewThumbnailCommand(width); err == nil {
			t.Errorf("expected error for width %d", width)
		}
	}
}

func TestThumbnailCommand_ScalesPNG(t *testing.T) {
	command, err := NewThumbnailCommand(20)
	if err != nil {
		t.Fatalf("NewThumbnailCommand error: %v", err)
	}
	thumbnail, err := command.Execute(createTestPNG(t, 100, 50))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(thumbnail))
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png thumbnail, got %s", format)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("expected 20x10 thumbnail, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestThumbnailCommand_KeepsJPEGEncoding(t *testing.T) {
	command, err := NewThumbnailCommand(32)
	if err != nil {
		t.Fatalf("NewThumbnailCommand error: %v", err)
	}

	thumbnail, err := command.Execute(createTestJPEG(t, 64, 64))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	imageType, err := DetectImageType(thumbnail)
	if err != nil {
		t.Fatalf("DetectImageType error: %v", err)
	}
	if imageType != model.ImageTypeJPEG {
		t.Errorf("expected JPEG thumbnail, got %s", imageType)
	}
	width, height, err := Dimensions(thumbnail)
	if err != nil {
		t.Fatalf("Dimensions error: %v", err)
	}
	if width != 32 || height != 32 {
		t.Errorf("expected 32x32 thumbnail, got %dx%d", width, height)
	}
}

func TestThumbnailCommand_SmallImageUnchanged(t *testing.T) {
	command, err := NewThumbnailCommand(200)
	if err != nil {
		t.Fatalf("NewThumbnailCommand error: %v", err)
	}

	original := createTestPNG(t, 50, 50)
	thumbnail, err := command.Execute(original)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !bytes.Equal(original, thumbnail) {
		t.Errorf("expected small image to be returned unchanged")
	}
}

func TestCheckRegion(t *testing.T) {
	data := createTestPNG(t, 100, 80)

	tests := []struct {
		name    string
		region  model.ImageRegion
		wantErr bool
	}{
		{"Full image", model.ImageRegion{X: 0, Y: 0, Width: 100, Height: 80}, false},
		{"Inner region", model.ImageRegion{X: 10, Y: 20, Width: 30, Height: 40}, false},
		{"Zero width", model.ImageRegion{X: 0, Y: 0, Width: 0, Height: 10}, true},
		{"Negative origin", model.ImageRegion{X: -1, Y: 0, Width: 10, Height: 10}, true},
		{"Exceeds width", model.ImageRegion{X: 50, Y: 0, Width: 51, Height: 10}, true},
		{"Exceeds height", model.ImageRegion{X: 0, Y: 70, Width: 10, Height: 11}, true},
		{"Huge x offset", model.ImageRegion{X: math.MaxInt, Y: 0, Width: 1, Height: 5}, true},
		{"Huge y offset", model.ImageRegion{X: 0, Y: math.MaxInt, Width: 5, Height: 1}, true},
		{"Huge width", model.ImageRegion{X: 1, Y: 0, Width: math.MaxInt, Height: 5}, true},
		{"Ends at bottom right corner", model.ImageRegion{X: 99, Y: 79, Width: 1, Height: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRegion(data, tt.region)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckRegion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
