package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jo-hoe/goimagesearch/internal/model"
	_ "modernc.org/sqlite"
)

// objectColumns maps selectable field names to scan targets.
var objectColumns = map[string]func(o *model.RecognizableObject) any{
	"uuid":           func(o *model.RecognizableObject) any { return &o.UUID },
	"name":           func(o *model.RecognizableObject) any { return &o.Name },
	"category":       func(o *model.RecognizableObject) any { return &o.Category },
	"image_type":     func(o *model.RecognizableObject) any { return &o.ImageType },
	"image_data":     func(o *model.RecognizableObject) any { return &o.ImageData },
	"thumbnail_data": func(o *model.RecognizableObject) any { return &o.ThumbnailData },
}

var allObjectFields = []string{"uuid", "name", "category", "image_type", "image_data", "thumbnail_data"}

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every new connection to ":memory:" opens a fresh empty database
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() (*sql.DB, error) {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS recognizable_objects (
		uuid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		image_type TEXT NOT NULL,
		image_data BLOB,
		thumbnail_data BLOB
	)`)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS configuration (
		id TEXT PRIMARY KEY,
		password TEXT,
		access_key_id TEXT,
		access_key_secret TEXT,
		region_id TEXT,
		instance_name TEXT,
		domain TEXT,
		namespace TEXT,
		base_url TEXT
	)`)
	if err != nil {
		return nil, err
	}

	return s.db, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DoesDatabaseExist reports whether the database still answers a ping.
func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	if s.db == nil {
		return false
	}
	return s.db.Ping() == nil
}

func (s *SQLiteDatabase) CreateObject(ctx context.Context, object *model.RecognizableObject) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO recognizable_objects (uuid, name, category, image_type, image_data, thumbnail_data) VALUES (?, ?, ?, ?, ?, ?)",
		object.UUID, object.Name, string(object.Category), string(object.ImageType), object.ImageData, object.ThumbnailData)
	return err
}

func (s *SQLiteDatabase) UpdateObject(ctx context.Context, object *model.RecognizableObject) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE recognizable_objects SET name = ?, category = ?, image_type = ? WHERE uuid = ?",
		object.Name, string(object.Category), string(object.ImageType), object.UUID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no object with uuid %s", object.UUID)
	}
	return nil
}

func (s *SQLiteDatabase) GetObjectByUUID(ctx context.Context, uuid string) (*model.RecognizableObject, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT uuid, name, category, image_type, image_data, thumbnail_data FROM recognizable_objects WHERE uuid = ?", uuid)

	var object model.RecognizableObject
	err := row.Scan(&object.UUID, &object.Name, &object.Category, &object.ImageType, &object.ImageData, &object.ThumbnailData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &object, nil
}

func (s *SQLiteDatabase) GetObjects(ctx context.Context, fields ...string) ([]*model.RecognizableObject, error) {
	if len(fields) == 0 {
		fields = allObjectFields
	}
	for _, field := range fields {
		if _, ok := objectColumns[field]; !ok {
			return nil, fmt.Errorf("unknown object field: %s", field)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM recognizable_objects ORDER BY name, uuid", strings.Join(fields, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var objects []*model.RecognizableObject
	for rows.Next() {
		var object model.RecognizableObject
		targets := make([]any, 0, len(fields))
		for _, field := range fields {
			targets = append(targets, objectColumns[field](&object))
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		objects = append(objects, &object)
	}
	return objects, rows.Err()
}

func (s *SQLiteDatabase) DeleteObject(ctx context.Context, uuid string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM recognizable_objects WHERE uuid = ?", uuid)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLiteDatabase) SaveConfiguration(ctx context.Context, configuration *model.Configuration) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO configuration
		(id, password, access_key_id, access_key_secret, region_id, instance_name, domain, namespace, base_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			password = excluded.password,
			access_key_id = excluded.access_key_id,
			access_key_secret = excluded.access_key_secret,
			region_id = excluded.region_id,
			instance_name = excluded.instance_name,
			domain = excluded.domain,
			namespace = excluded.namespace,
			base_url = excluded.base_url`,
		model.ConfigurationID,
		configuration.Password,
		configuration.AccessKeyID,
		configuration.AccessKeySecret,
		configuration.RegionID,
		configuration.InstanceName,
		configuration.Domain,
		configuration.Namespace,
		configuration.BaseURL)
	return err
}

func (s *SQLiteDatabase) LoadConfiguration(ctx context.Context) (*model.Configuration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, password, access_key_id, access_key_secret, region_id,
		instance_name, domain, namespace, base_url FROM configuration WHERE id = ?`, model.ConfigurationID)

	var (
		configuration model.Configuration
		password      sql.NullString
	)
	err := row.Scan(&configuration.ID, &password, &configuration.AccessKeyID, &configuration.AccessKeySecret,
		&configuration.RegionID, &configuration.InstanceName, &configuration.Domain, &configuration.Namespace,
		&configuration.BaseURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	configuration.Password = password.String
	return &configuration, nil
}
