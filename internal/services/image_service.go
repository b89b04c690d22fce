// internal/services/image_service.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/javajoker/storefront-backend/internal/config"
)

// ImageService normalizes uploaded images before they hit storage: resize to
// the configured longest edge, flatten transparency, and re-encode as JPEG
// stepping the quality down until the byte budget is met. GIFs pass through
// untouched so animations survive.
type ImageService struct {
	config *config.Config
}

type ProcessedImage struct {
	Data    []byte
	Ext     string
	Width   int
	Height  int
	Quality int
}

func NewImageService(config *config.Config) *ImageService {
	return &ImageService{config: config}
}

func (s *ImageService) Process(data []byte) (*ProcessedImage, error) {
	format := sniffImageFormat(data)
	if format == "" {
		return nil, errors.New("unsupported image format")
	}

	if format == "gif" {
		processed := &ProcessedImage{Data: data, Ext: ".gif"}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			processed.Width = cfg.Width
			processed.Height = cfg.Height
		}
		return processed, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	maxDim := s.config.Media.MaxDimension
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		bounds = img.Bounds()
	}

	if format == "png" {
		img = flatten(img)
	}

	encoded, quality, err := s.encodeToBudget(img)
	if err != nil {
		return nil, err
	}

	return &ProcessedImage{
		Data:    encoded,
		Ext:     ".jpg",
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Quality: quality,
	}, nil
}

// encodeToBudget re-encodes at decreasing JPEG quality until the result fits
// the configured byte budget or the quality floor is reached. The last
// attempt wins either way.
func (s *ImageService) encodeToBudget(img image.Image) ([]byte, int, error) {
	budget := s.config.Media.ImageBudget
	floor := s.config.Media.MinJPEGQuality

	var buf bytes.Buffer
	quality := 85
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, 0, fmt.Errorf("failed to encode image: %w", err)
		}

		if int64(buf.Len()) <= budget || quality-5 < floor {
			break
		}
		quality -= 5
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, quality, nil
}

// flatten composites transparent pixels onto white, since JPEG has no alpha.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

func sniffImageFormat(data []byte) string {
	// JPEG
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg"
	}

	// PNG
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "png"
	}

	// GIF
	if len(data) >= 6 && (string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a") {
		return "gif"
	}

	return ""
}
