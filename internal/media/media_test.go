package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	wavBytes  = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x44\xac\x00\x00")
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		list     Allowlist
		data     []byte
		expected string
	}{
		{Images, pngBytes, "image/png"},
		{Images, jpegBytes, "image/jpeg"},
		{Audio, wavBytes, "audio/wav"},
	}
	for _, c := range testCases {
		got, err := c.list.Detect(c.data)
		require.NoError(t, err)
		assert.Equal(t, c.expected, got)
	}
}

func TestDetectRejects(t *testing.T) {
	_, err := Images.Detect([]byte("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "text/plain")

	_, err = Audio.Detect(pngBytes)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Images.Detect(wavBytes)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
