// Package imagesearch talks to the remote visual search index that objects
// are registered in.
package imagesearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jo-hoe/goimagesearch/internal/model"
)

// ErrRemoteCall marks every failure reported by, or while reaching, the remote index.
var ErrRemoteCall = errors.New("image search request failed")

// Client registers images in a search index and queries it for similar images.
// Every call uses the configuration it is given, nothing is cached between calls.
type Client interface {
	// Register adds the image under the given uuid, replacing an existing registration.
	Register(ctx context.Context, configuration *model.Configuration, imageData []byte,
		imageType model.ImageType, category model.ObjectCategory, uuid string) error
	Unregister(ctx context.Context, configuration *model.Configuration, uuid string) error
	// Search returns the registered images most similar to imageData. A non-nil
	// region restricts the search to that part of the image.
	Search(ctx context.Context, configuration *model.Configuration, imageData []byte,
		region *model.ImageRegion) (*model.SearchResult, error)
	// CheckConfiguration issues a single-result search with a sample image to
	// verify the credentials and instance settings.
	CheckConfiguration(ctx context.Context, configuration *model.Configuration) error
}

// APIError is returned when the remote index answers but rejects the request.
type APIError struct {
	Action     string
	StatusCode int
	RequestID  string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s rejected (status = %d, request id = %s, code = %s, message = %s)",
		e.Action, e.StatusCode, e.RequestID, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrRemoteCall
}

// NewClient creates the client for the given provider name.
func NewClient(provider string, options ...AliyunOption) (Client, error) {
	switch provider {
	case "", "aliyun":
		return NewAliyunClient(options...), nil
	case "memory":
		return NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unsupported image search provider: %s", provider)
	}
}
