package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jo-hoe/goimagesearch/internal/backend/database"
	"github.com/jo-hoe/goimagesearch/internal/backend/imageprocessing"
	"github.com/jo-hoe/goimagesearch/internal/backend/imagesearch"
	"github.com/jo-hoe/goimagesearch/internal/model"
)

// listFields are the columns loaded when listing objects, image payloads are left out.
var listFields = []string{"uuid", "name", "category", "image_type"}

// ObjectService keeps the object repository and the image search index in step.
// There is no transaction spanning both: a failure after the index call leaves
// the two out of sync.
type ObjectService struct {
	repository     database.ObjectRepository
	configurations *ConfigurationService
	client         imagesearch.Client
	thumbnail      *imageprocessing.ThumbnailCommand
}

func NewObjectService(repository database.ObjectRepository, configurations *ConfigurationService,
	client imagesearch.Client, thumbnail *imageprocessing.ThumbnailCommand) *ObjectService {
	return &ObjectService{
		repository:     repository,
		configurations: configurations,
		client:         client,
		thumbnail:      thumbnail,
	}
}

// Create registers the object image in the index, then stores the object.
// A missing thumbnail is generated from the image.
func (service *ObjectService) Create(ctx context.Context, object *model.RecognizableObject) (*model.RecognizableObject, error) {
	if err := validateAttributes(object); err != nil {
		return nil, err
	}
	if err := checkImage("image", object.ImageData, object.ImageType); err != nil {
		return nil, err
	}

	toCreate := *object
	if len(toCreate.ThumbnailData) == 0 {
		thumbnail, err := service.thumbnail.Execute(toCreate.ImageData)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to generate the thumbnail: %v", ErrInvalidImage, err)
		}
		toCreate.ThumbnailData = thumbnail
	} else if err := checkImage("thumbnail", toCreate.ThumbnailData, toCreate.ImageType); err != nil {
		return nil, err
	}

	existing, err := service.repository.GetObjectByUUID(ctx, toCreate.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up object %s: %w", toCreate.UUID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: an object already exists with the uuid %s", ErrInvalidObject, toCreate.UUID)
	}

	configuration, err := service.configurations.required(ctx)
	if err != nil {
		return nil, err
	}
	if err := service.client.Register(ctx, configuration, toCreate.ImageData, toCreate.ImageType, toCreate.Category, toCreate.UUID); err != nil {
		return nil, err
	}

	if err := service.repository.CreateObject(ctx, &toCreate); err != nil {
		slog.Error("object registered in the image search index but not saved",
			"uuid", toCreate.UUID, "error", err)
		return nil, fmt.Errorf("failed to save object %s: %w", toCreate.UUID, err)
	}

	slog.Info("object created", "uuid", toCreate.UUID, "name", toCreate.Name, "category", toCreate.Category,
		"image_size_bytes", len(toCreate.ImageData), "thumbnail_size_bytes", len(toCreate.ThumbnailData))
	return &toCreate, nil
}

// Update changes the name and category of an existing object. The image type
// cannot change and the stored image payloads are kept. A category change
// re-registers the image in the index.
func (service *ObjectService) Update(ctx context.Context, object *model.RecognizableObject) (*model.RecognizableObject, error) {
	if err := validateAttributes(object); err != nil {
		return nil, err
	}

	existing, err := service.repository.GetObjectByUUID(ctx, object.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up object %s: %w", object.UUID, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: no object exists with the uuid %s", ErrObjectNotFound, object.UUID)
	}
	if object.ImageType != existing.ImageType {
		return nil, fmt.Errorf("%w: the image type cannot be changed (existing object image type = %s, updated object image type = %s)",
			ErrInvalidObject, existing.ImageType, object.ImageType)
	}

	updated := *existing
	updated.Name = object.Name
	updated.Category = object.Category

	if updated.Category != existing.Category {
		configuration, err := service.configurations.required(ctx)
		if err != nil {
			return nil, err
		}
		if err := service.client.Register(ctx, configuration, existing.ImageData, existing.ImageType, updated.Category, updated.UUID); err != nil {
			return nil, err
		}
		slog.Info("object re-registered after category change", "uuid", updated.UUID,
			"previous_category", existing.Category, "category", updated.Category)
	}

	if err := service.repository.UpdateObject(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update object %s: %w", updated.UUID, err)
	}

	slog.Info("object updated", "uuid", updated.UUID, "name", updated.Name, "category", updated.Category)
	return &updated, nil
}

// Delete removes the object from the index and then from the repository. It
// returns false when no object has the uuid. A failing index call aborts the
// delete.
func (service *ObjectService) Delete(ctx context.Context, uuid string) (bool, error) {
	existing, err := service.repository.GetObjectByUUID(ctx, uuid)
	if err != nil {
		return false, fmt.Errorf("failed to look up object %s: %w", uuid, err)
	}
	if existing == nil {
		return false, nil
	}

	configuration, err := service.configurations.required(ctx)
	if err != nil {
		return false, err
	}
	if err := service.client.Unregister(ctx, configuration, uuid); err != nil {
		return false, err
	}

	deleted, err := service.repository.DeleteObject(ctx, uuid)
	if err != nil {
		slog.Error("object removed from the image search index but not deleted", "uuid", uuid, "error", err)
		return false, fmt.Errorf("failed to delete object %s: %w", uuid, err)
	}

	slog.Info("object deleted", "uuid", uuid, "deleted", deleted)
	return deleted, nil
}

// FindByUUID returns the object with its image payloads, or nil when unknown.
func (service *ObjectService) FindByUUID(ctx context.Context, uuid string) (*model.RecognizableObject, error) {
	object, err := service.repository.GetObjectByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to find object %s: %w", uuid, err)
	}
	return object, nil
}

// FindAll returns all objects sorted by name, without image payloads.
func (service *ObjectService) FindAll(ctx context.Context) ([]*model.RecognizableObject, error) {
	objects, err := service.repository.GetObjects(ctx, listFields...)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return objects, nil
}

// FindAllBySimilarImage searches the index for images similar to imageData,
// restricted to region when one is given.
func (service *ObjectService) FindAllBySimilarImage(ctx context.Context, imageData []byte, region *model.ImageRegion) (*model.SearchResult, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: the image is empty", ErrInvalidImage)
	}
	if _, err := imageprocessing.DetectImageType(imageData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if region != nil {
		if err := imageprocessing.CheckRegion(imageData, *region); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}

	configuration, err := service.configurations.required(ctx)
	if err != nil {
		return nil, err
	}
	result, err := service.client.Search(ctx, configuration, imageData, region)
	if err != nil {
		return nil, err
	}

	slog.Info("similar image search completed", "hits", len(result.Auctions), "image_size_bytes", len(imageData))
	return result, nil
}

func validateAttributes(object *model.RecognizableObject) error {
	if object == nil {
		return fmt.Errorf("%w: the object cannot be null", ErrInvalidObject)
	}
	if object.UUID == "" {
		return fmt.Errorf("%w: the uuid is empty", ErrInvalidObject)
	}
	if !object.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidObject, object.Category)
	}
	if !object.ImageType.IsValid() {
		return fmt.Errorf("%w: unknown image type %q", ErrInvalidObject, object.ImageType)
	}
	return nil
}

// checkImage verifies data decodes as the declared image type.
func checkImage(name string, data []byte, declared model.ImageType) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: the %s is empty", ErrInvalidImage, name)
	}
	detected, err := imageprocessing.DetectImageType(data)
	if errors.Is(err, imageprocessing.ErrImageTooLarge) {
		return fmt.Errorf("%w: the %s: %v", ErrInvalidImage, name, err)
	}
	if errors.Is(err, imageprocessing.ErrUnsupportedImage) {
		return fmt.Errorf("%w: the %s is not a JPEG or PNG image", ErrInvalidImage, name)
	}
	if err != nil {
		return err
	}
	if detected != declared {
		return fmt.Errorf("%w: the %s is a %s image but the image type is %s", ErrInvalidImage, name, detected, declared)
	}
	return nil
}
