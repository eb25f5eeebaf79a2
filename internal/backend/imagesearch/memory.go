package imagesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sort"
	"sync"

	"github.com/jo-hoe/goimagesearch/internal/model"
)

// memoryScore is the similarity reported for every hit of the in-memory index.
const memoryScore = 4.2

type memoryEntry struct {
	category model.ObjectCategory
	picName  string
}

// MemoryClient is an in-process index for local development. A search
// returns every registered image; no similarity is computed.
type MemoryClient struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{entries: make(map[string]memoryEntry)}
}

func (c *MemoryClient) Register(_ context.Context, _ *model.Configuration, _ []byte,
	imageType model.ImageType, category model.ObjectCategory, uuid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uuid] = memoryEntry{category: category, picName: uuid + "." + imageType.Extension()}
	slog.Debug("memory index: registered image", "uuid", uuid, "category", category)
	return nil
}

func (c *MemoryClient) Unregister(_ context.Context, _ *model.Configuration, uuid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uuid)
	slog.Debug("memory index: unregistered image", "uuid", uuid)
	return nil
}

func (c *MemoryClient) Search(_ context.Context, _ *model.Configuration, imageData []byte,
	region *model.ImageRegion) (*model.SearchResult, error) {
	c.mu.RLock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	auctions := make([]model.ImageSearchAuction, 0, len(ids))
	for _, id := range ids {
		entry := c.entries[id]
		auctions = append(auctions, model.ImageSearchAuction{
			ItemID:          id,
			CatID:           entry.category.ID(),
			PicName:         entry.picName,
			StoreType:       model.StoreTypeDatabase,
			SimilarityScore: memoryScore,
			CustomContent:   map[string]string{"dbStore": "true"},
		})
	}
	c.mu.RUnlock()

	objectRegion := region
	if objectRegion == nil {
		if config, _, err := image.DecodeConfig(bytes.NewReader(imageData)); err == nil {
			objectRegion = &model.ImageRegion{Width: config.Width, Height: config.Height}
		}
	}

	raw, err := json.MarshalIndent(map[string]any{"Success": true, "Auctions": auctions}, "", "  ")
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{
		Auctions:        auctions,
		RawResponseJSON: string(raw),
		ObjectRegion:    objectRegion,
	}, nil
}

func (c *MemoryClient) CheckConfiguration(_ context.Context, _ *model.Configuration) error {
	return nil
}
