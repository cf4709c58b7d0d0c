package models

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// supportedImageTypes are the raster formats the vision model accepts inline
var supportedImageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/heic",
	"image/heif",
}

// SubjectImage is a decoded raster photo with its sniffed MIME type
type SubjectImage struct {
	Data     []byte
	MIMEType string
}

// IsEmpty reports whether no image bytes are present
func (i SubjectImage) IsEmpty() bool {
	return len(i.Data) == 0
}

// NewSubjectImage sniffs raw bytes and rejects anything that is not a supported raster image.
// maxBytes <= 0 disables the size check.
func NewSubjectImage(data []byte, maxBytes int64) (SubjectImage, error) {
	if len(data) == 0 {
		return SubjectImage{}, &ValidationError{Field: "image"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return SubjectImage{}, &ValidationError{Field: "image", Err: ErrImageTooLarge}
	}

	detected := mimetype.Detect(data)
	for _, supported := range supportedImageTypes {
		if detected.Is(supported) {
			return SubjectImage{Data: data, MIMEType: supported}, nil
		}
	}

	return SubjectImage{}, &ValidationError{
		Field: "image",
		Err:   fmt.Errorf("%w: %s", ErrUnsupportedImage, detected.String()),
	}
}

// ParseDataURI decodes "data:<mime>;base64,<payload>" (or a bare base64 payload)
// into a SubjectImage. The declared MIME type is ignored in favour of sniffing.
func ParseDataURI(value string, maxBytes int64) (SubjectImage, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return SubjectImage{}, &ValidationError{Field: "image"}
	}

	payload := value
	if strings.HasPrefix(value, "data:") {
		header, rest, found := strings.Cut(value, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return SubjectImage{}, &ValidationError{Field: "image", Err: ErrInvalidDataURI}
		}
		payload = rest
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return SubjectImage{}, &ValidationError{
			Field: "image",
			Err:   fmt.Errorf("%w: %v", ErrInvalidDataURI, err),
		}
	}

	return NewSubjectImage(data, maxBytes)
}
