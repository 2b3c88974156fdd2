package media

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedType is returned for content outside the allowlist.
var ErrUnsupportedType = errors.New("unsupported file type")

// Allowlist maps a detected MIME type to the type sent to the model.
type Allowlist [][2]string

var (
	// Images accepted as visual symptoms.
	Images = Allowlist{
		{"image/jpeg", "image/jpeg"},
		{"image/png", "image/png"},
		{"image/webp", "image/webp"},
		{"image/heic", "image/heic"},
		{"image/heif", "image/heif"},
	}

	// Audio accepted as recordings. Browsers record in WebM or MP4
	// containers, which sniff as video.
	Audio = Allowlist{
		{"audio/wav", "audio/wav"},
		{"audio/mpeg", "audio/mpeg"},
		{"audio/flac", "audio/flac"},
		{"audio/ogg", "audio/ogg"},
		{"audio/opus", "audio/ogg"},
		{"application/ogg", "audio/ogg"},
		{"audio/webm", "audio/webm"},
		{"video/webm", "audio/webm"},
		{"audio/mp4", "audio/mp4"},
		{"audio/x-m4a", "audio/mp4"},
		{"video/mp4", "audio/mp4"},
	}
)

// Detect sniffs data and returns the MIME type to send to the model.
func (a Allowlist) Detect(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, pair := range a {
			if m.Is(pair[0]) {
				return pair[1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected.String())
}
