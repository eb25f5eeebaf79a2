package model

// RecognizableObject is a stored product image together with its metadata.
type RecognizableObject struct {
	UUID          string         `db:"uuid"`
	Name          string         `db:"name"`
	Category      ObjectCategory `db:"category"`
	ImageType     ImageType      `db:"image_type"`
	ImageData     []byte         `db:"image_data"`     // original image as uploaded
	ThumbnailData []byte         `db:"thumbnail_data"` // same encoding as ImageData
}
