package database

import (
	"context"
	"database/sql"

	"github.com/jo-hoe/goimagesearch/internal/model"
)

type DatabaseService interface {
	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	ObjectRepository
	ConfigurationRepository
}

// ObjectRepository persists recognizable objects including their image payloads.
type ObjectRepository interface {
	CreateObject(ctx context.Context, object *model.RecognizableObject) error
	// UpdateObject overwrites the metadata columns; image and thumbnail data are never touched.
	UpdateObject(ctx context.Context, object *model.RecognizableObject) error
	// GetObjectByUUID returns nil without an error when no object has the given uuid.
	GetObjectByUUID(ctx context.Context, uuid string) (*model.RecognizableObject, error)
	// GetObjects returns all objects ordered by name. When fields are given only
	// those columns are loaded, the others keep their zero value.
	GetObjects(ctx context.Context, fields ...string) ([]*model.RecognizableObject, error)
	// DeleteObject reports whether a row was removed.
	DeleteObject(ctx context.Context, uuid string) (bool, error)
}

// ConfigurationRepository stores the single configuration record.
type ConfigurationRepository interface {
	SaveConfiguration(ctx context.Context, configuration *model.Configuration) error
	// LoadConfiguration returns nil without an error when nothing was saved yet.
	LoadConfiguration(ctx context.Context) (*model.Configuration, error)
}
