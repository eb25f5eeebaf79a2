package core

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/jo-hoe/goimagesearch/internal/backend/database"
	"github.com/jo-hoe/goimagesearch/internal/model"
)

type registration struct {
	uuid      string
	category  model.ObjectCategory
	imageType model.ImageType
	imageData []byte
}

// recordingClient is an image search client that records every call.
type recordingClient struct {
	mu              sync.Mutex
	registrations   []registration
	unregistrations []string
	searches        int
	lastRegion      *model.ImageRegion
	checked         []*model.Configuration

	registerErr   error
	unregisterErr error
	searchErr     error
	checkErr      error
	searchResult  *model.SearchResult
}

func (c *recordingClient) Register(_ context.Context, _ *model.Configuration, imageData []byte,
	imageType model.ImageType, category model.ObjectCategory, uuid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registerErr != nil {
		return c.registerErr
	}
	c.registrations = append(c.registrations, registration{uuid: uuid, category: category, imageType: imageType, imageData: imageData})
	return nil
}

func (c *recordingClient) Unregister(_ context.Context, _ *model.Configuration, uuid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unregisterErr != nil {
		return c.unregisterErr
	}
	c.unregistrations = append(c.unregistrations, uuid)
	return nil
}

func (c *recordingClient) Search(_ context.Context, _ *model.Configuration, _ []byte,
	region *model.ImageRegion) (*model.SearchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches++
	c.lastRegion = region
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	if c.searchResult != nil {
		return c.searchResult, nil
	}
	return &model.SearchResult{Auctions: []model.ImageSearchAuction{}}, nil
}

func (c *recordingClient) CheckConfiguration(_ context.Context, configuration *model.Configuration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = append(c.checked, configuration)
	return c.checkErr
}

func (c *recordingClient) registrationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.registrations)
}

func newTestCoreService(t *testing.T) (*CoreService, *recordingClient) {
	t.Helper()
	cfg := &ServiceConfig{
		Database: Database{
			Type:             "sqlite",
			ConnectionString: ":memory:",
		},
		ThumbnailWidth: 16,
	}
	databaseService, err := database.NewDatabase(cfg.Database.Type, cfg.Database.ConnectionString)
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	client := &recordingClient{}
	svc, err := newCoreService(cfg, databaseService, databaseService, client)
	if err != nil {
		t.Fatalf("newCoreService error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, client
}

func testConfiguration() *model.Configuration {
	return &model.Configuration{
		Password:        "s3cret",
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
		RegionID:        "ap-southeast-1",
		InstanceName:    "instance",
		Domain:          "imagesearch.ap-southeast-1.aliyuncs.com",
		Namespace:       "test",
	}
}

// newConfiguredCoreService returns a core service with a saved configuration.
func newConfiguredCoreService(t *testing.T) (*CoreService, *recordingClient) {
	t.Helper()
	svc, client := newTestCoreService(t)
	if err := svc.Configurations.Save(context.Background(), testConfiguration()); err != nil {
		t.Fatalf("Save configuration error: %v", err)
	}
	return svc, client
}

func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

// createOversizedPNG returns a small PNG whose header declares width x height pixels.
func createOversizedPNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := createTestPNG(t, 4, 4)
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

func newTestObject(t *testing.T, uuid string) *model.RecognizableObject {
	t.Helper()
	return &model.RecognizableObject{
		UUID:      uuid,
		Name:      "Wooden chair",
		Category:  model.CategoryFurniture,
		ImageType: model.ImageTypePNG,
		ImageData: createTestPNG(t, 64, 32),
	}
}
