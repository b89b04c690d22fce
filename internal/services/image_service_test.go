// internal/services/image_service_test.go
package services

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/config"
)

func imageTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Media.MaxDimension = 200
	cfg.Media.ImageBudget = 512 * 1024
	cfg.Media.MinJPEGQuality = 40
	return cfg
}

func pngFixture(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 7 % 256),
				G: uint8(y * 13 % 256),
				B: uint8((x + y) * 31 % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSniffImageFormat(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		format string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif87a", []byte("GIF87a trailer"), "gif"},
		{"gif89a", []byte("GIF89a trailer"), "gif"},
		{"text", []byte("definitely not an image"), ""},
		{"empty", nil, ""},
		{"truncated", []byte{0xFF, 0xD8}, ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.format, sniffImageFormat(tc.data), tc.name)
	}
}

func TestProcessResizesToMaxDimension(t *testing.T) {
	service := NewImageService(imageTestConfig())

	processed, err := service.Process(pngFixture(t, 400, 300))
	require.NoError(t, err)

	assert.Equal(t, ".jpg", processed.Ext)
	assert.Equal(t, 200, processed.Width)
	assert.Equal(t, 150, processed.Height)
	assert.Equal(t, 85, processed.Quality)
	assert.Equal(t, "jpeg", sniffImageFormat(processed.Data))

	img, err := jpeg.Decode(bytes.NewReader(processed.Data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestProcessKeepsSmallImageSize(t *testing.T) {
	service := NewImageService(imageTestConfig())

	processed, err := service.Process(pngFixture(t, 100, 80))
	require.NoError(t, err)

	assert.Equal(t, 100, processed.Width)
	assert.Equal(t, 80, processed.Height)
}

func TestProcessFlattensTransparentPNG(t *testing.T) {
	service := NewImageService(imageTestConfig())

	// Fully transparent image; flattening must composite it onto white.
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	processed, err := service.Process(buf.Bytes())
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(processed.Data))
	require.NoError(t, err)

	r, g, b, _ := decoded.At(10, 10).RGBA()
	assert.Greater(t, r, uint32(60000))
	assert.Greater(t, g, uint32(60000))
	assert.Greater(t, b, uint32(60000))
}

func TestProcessStopsAtQualityFloor(t *testing.T) {
	cfg := imageTestConfig()
	cfg.Media.ImageBudget = 1 // unreachable, forces the loop to the floor

	service := NewImageService(cfg)

	processed, err := service.Process(pngFixture(t, 200, 200))
	require.NoError(t, err)

	assert.Equal(t, cfg.Media.MinJPEGQuality, processed.Quality)
	assert.NotEmpty(t, processed.Data)
}

func TestProcessPassesGIFThrough(t *testing.T) {
	service := NewImageService(imageTestConfig())

	img := image.NewPaletted(image.Rect(0, 0, 12, 9), color.Palette{
		color.White, color.Black,
	})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	processed, err := service.Process(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, ".gif", processed.Ext)
	assert.Equal(t, buf.Bytes(), processed.Data)
	assert.Equal(t, 12, processed.Width)
	assert.Equal(t, 9, processed.Height)
}

func TestProcessRejectsUnsupportedData(t *testing.T) {
	service := NewImageService(imageTestConfig())

	_, err := service.Process([]byte("<html>not an image</html>"))
	assert.EqualError(t, err, "unsupported image format")
}
