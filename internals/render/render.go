// Package render resizes images and encodes them as PNG
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Renderer renders src at exactly width x height pixels and returns PNG data
type Renderer interface {
	Render(ctx context.Context, src []byte, width int, height int) ([]byte, error)
}

var (
	// ErrInvalidSize is returned if the wanted width or height is not positive
	ErrInvalidSize = errors.New("width and height must be positive")
	// ErrUnknownInterpolator is returned by ParseInterpolator for unknown names
	ErrUnknownInterpolator = errors.New("unknown interpolator")
	// ErrUnknownCompression is returned by ParseCompression for unknown names
	ErrUnknownCompression = errors.New("unknown compression level")
)

// Interpolators maps the supported interpolator names to their implementation
var Interpolators = map[string]draw.Interpolator{
	"nearest":        draw.NearestNeighbor,
	"approxbilinear": draw.ApproxBiLinear,
	"bilinear":       draw.BiLinear,
	"catmullrom":     draw.CatmullRom,
}

// CompressionLevels maps the supported compression names to png levels
var CompressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"speed":   png.BestSpeed,
	"best":    png.BestCompression,
}

// ParseInterpolator returns the interpolator with the given name
func ParseInterpolator(name string) (draw.Interpolator, error) {
	i, ok := Interpolators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}
	return i, nil
}

// ParseCompression returns the png compression level with the given name
func ParseCompression(name string) (png.CompressionLevel, error) {
	l, ok := CompressionLevels[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
	return l, nil
}

// Scaler is the default Renderer. It decodes any registered image format
// and scales it with the configured interpolator.
type Scaler struct {
	// Interpolator used for scaling. Defaults to draw.CatmullRom
	Interpolator draw.Interpolator
	// Compression of the resulting png
	Compression png.CompressionLevel
}

// New returns a Scaler using CatmullRom and default compression
func New() *Scaler {
	return &Scaler{Interpolator: draw.CatmullRom}
}

// Render implements Renderer
func (s *Scaler) Render(ctx context.Context, src []byte, width int, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	interpolator := s.Interpolator
	if interpolator == nil {
		interpolator = draw.CatmullRom
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	interpolator.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	// scaling large images takes a while, no need to encode if we were cancelled meanwhile
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: s.Compression}
	if err := enc.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
