package intake

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resalelens/server/internal/models"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		ok       bool
		contains string
	}{
		{name: "Too small", width: 50, height: 50, ok: false, contains: "해상도"},
		{name: "Narrow", width: 99, height: 800, ok: false, contains: "해상도"},
		{name: "Too many pixels", width: 4000, height: 4000, ok: false, contains: "크기"},
		{name: "Regular photo", width: 800, height: 600, ok: true},
		{name: "Exactly at bounds", width: 100, height: 100_000, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateImage(tt.width, tt.height)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Empty(t, reason)
			} else {
				assert.Contains(t, reason, tt.contains)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	info, err := Inspect(encodePNG(t, 800, 600))
	require.NoError(t, err)
	assert.Equal(t, 800, info.Width)
	assert.Equal(t, 600, info.Height)
	assert.Equal(t, "image/png", info.MIME)

	info, err = Inspect(encodeJPEG(t, 120, 130))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.MIME)
	assert.Equal(t, 130, info.Height)

	_, err = Inspect([]byte("GIF89a not really"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestNormalize_Description(t *testing.T) {
	_, _, err := Normalize("   \n\t", "Electronics", nil)
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	sub, notices, err := Normalize("  아이폰 14 프로  ", "전자기기", nil)
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, "아이폰 14 프로", sub.Description)
	assert.Equal(t, models.CategoryElectronics, sub.Category)
	assert.False(t, sub.HasImage())
}

func TestNormalize_Category(t *testing.T) {
	_, _, err := Normalize("책", "Spaceships", nil)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	sub, _, err := Normalize("책", "books", nil)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryBooks, sub.Category)
}

func TestNormalize_Image(t *testing.T) {
	// Valid image is kept
	sub, notices, err := Normalize("가방", "Bags", encodePNG(t, 800, 600))
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.True(t, sub.HasImage())
	assert.Equal(t, "image/png", sub.ImageMIME)

	// Low resolution is flagged and dropped, not fatal
	sub, notices, err = Normalize("가방", "Bags", encodePNG(t, 50, 50))
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "image", notices[0].Field)
	assert.Contains(t, notices[0].Message, "해상도")
	assert.False(t, sub.HasImage())

	// Garbage bytes are flagged and dropped
	sub, notices, err = Normalize("가방", "Bags", []byte("not an image"))
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.False(t, sub.HasImage())
}
