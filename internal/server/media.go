package server

import (
	"io"
	"mime/multipart"

	"github.com/sebrandon1/pulsepoint/internal/media"
)

// readUpload returns the content of an optional upload and its accepted MIME
// type. A missing or empty file yields nil data.
func readUpload(fh *multipart.FileHeader, accepted media.Allowlist) ([]byte, string, error) {
	if fh == nil || fh.Size == 0 {
		return nil, "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", nil
	}

	mimeType, err := accepted.Detect(data)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}
