package advisor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrInvalidImage is returned when an upload cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrUnsupportedImage is returned for image formats we cannot decode.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var supportedImageTypes = []string{"image/png", "image/jpeg", "image/gif"}

// maxImagePixels bounds the decoded size of an upload. A few hundred KiB of
// compressed data can declare dimensions that need gigabytes once decoded.
const maxImagePixels = 40_000_000

// NormalizeImage sniffs data, decodes it and re-encodes it as an opaque RGB PNG.
// Transparent areas are flattened onto white.
func NormalizeImage(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), supportedImageTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d is outside the %d pixel limit", ErrInvalidImage, cfg.Width, cfg.Height, maxImagePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := src.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(rgb, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgb); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
