package model

// ImageType is the encoding of an object image.
type ImageType string

const (
	ImageTypeJPEG ImageType = "JPEG"
	ImageTypePNG  ImageType = "PNG"
)

var imageTypes = []ImageType{ImageTypeJPEG, ImageTypePNG}

// Extension returns the file extension used when naming pictures.
func (t ImageType) Extension() string {
	switch t {
	case ImageTypeJPEG:
		return "jpg"
	case ImageTypePNG:
		return "png"
	}
	return ""
}

// ContentType returns the MIME type served for images of this type.
func (t ImageType) ContentType() string {
	switch t {
	case ImageTypeJPEG:
		return "image/jpeg"
	case ImageTypePNG:
		return "image/png"
	}
	return "application/octet-stream"
}

func (t ImageType) IsValid() bool {
	return t.Extension() != ""
}

// ImageTypeNames lists all image type names.
func ImageTypeNames() []string {
	names := make([]string, 0, len(imageTypes))
	for _, t := range imageTypes {
		names = append(names, string(t))
	}
	return names
}
