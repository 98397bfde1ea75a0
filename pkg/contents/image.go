package contents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSize is returned when the size of an image is not "<width>x<height>"
	// with positive integer width and height
	ErrInvalidSize = errors.New(`size must be "<width>x<height>" with positive integers`)
	// ErrInvalidScale is returned when the scale of an image is not "<n>x" with a positive integer n
	ErrInvalidScale = errors.New(`scale must be "<n>x" with a positive integer`)
	// ErrTooLarge is returned when the pixel size of an image exceeds MaxPixels
	ErrTooLarge = fmt.Errorf("%w: pixel size is larger than %d", ErrInvalidSize, MaxPixels)
	// ErrInvalidIdiom is returned when the idiom is empty or contains a path separator
	ErrInvalidIdiom = errors.New("idiom must be a non-empty name without path separators")
)

// MaxPixels is the largest width or height in pixels an image may have
const MaxPixels = 10240

// Image is one entry of the "images" array.
// Size, Scale, Idiom and Filename are typed, everything else is kept as-is.
type Image struct {
	// Size in points, like "60x60"
	Size string
	// Scale like "2x". Empty means 1x
	Scale string
	// Idiom like "iphone" or "ipad"
	Idiom string
	// Filename of the rendition, relative to the asset set directory
	Filename string

	raw Object
}

// Dimensions describes the parsed size and scale of an image
type Dimensions struct {
	// Width in points
	Width int
	// Height in points
	Height int
	// Scale factor
	Scale int
}

// PixelWidth returns the width in pixels
func (d Dimensions) PixelWidth() int { return d.Width * d.Scale }

// PixelHeight returns the height in pixels
func (d Dimensions) PixelHeight() int { return d.Height * d.Scale }

// Filename returns the rendition filename for the given idiom.
// The pattern is consumed by Xcode tooling and must not change.
func (d Dimensions) Filename(idiom string) string {
	return fmt.Sprintf("AppIcon-%dx%d@%dx-%s.png", d.Width, d.Height, d.Scale, idiom)
}

// Dimensions parses Size and Scale
func (i *Image) Dimensions() (Dimensions, error) {
	w, h, err := ParseSize(i.Size)
	if err != nil {
		return Dimensions{}, err
	}
	scale, err := ParseScale(i.Scale)
	if err != nil {
		return Dimensions{}, err
	}
	// compared by division, the multiplication may overflow
	if w > MaxPixels/scale || h > MaxPixels/scale {
		return Dimensions{}, fmt.Errorf("%w: %q at %q", ErrTooLarge, i.Size, i.Scale)
	}
	return Dimensions{Width: w, Height: h, Scale: scale}, nil
}

// DerivedFilename returns the filename this image should have
func (i *Image) DerivedFilename() (string, error) {
	d, err := i.Dimensions()
	if err != nil {
		return "", err
	}
	if i.Idiom == "" || strings.ContainsAny(i.Idiom, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdiom, i.Idiom)
	}
	return d.Filename(i.Idiom), nil
}

// Field returns a field that is not one of the typed ones
func (i *Image) Field(key string) (json.RawMessage, bool) {
	switch key {
	case "size", "scale", "idiom", "filename":
		return nil, false
	}
	return i.raw.Get(key)
}

// ParseSize parses "<width>x<height>"
func ParseSize(size string) (width int, height int, err error) {
	parts := strings.Split(size, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	width, err = positiveInt(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	height, err = positiveInt(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	return width, height, nil
}

// ParseScale parses "<n>x". An empty scale is 1
func ParseScale(scale string) (int, error) {
	if scale == "" {
		return 1, nil
	}
	if !strings.HasSuffix(scale, "x") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScale, scale)
	}
	n, err := positiveInt(strings.TrimSuffix(scale, "x"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScale, scale)
	}
	return n, nil
}

func positiveInt(s string) (int, error) {
	// Atoi accepts a leading sign, we don't
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Image) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &i.raw); err != nil {
		return err
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"size", &i.Size},
		{"scale", &i.Scale},
		{"idiom", &i.Idiom},
		{"filename", &i.Filename},
	}
	for _, f := range fields {
		s, _, err := i.raw.GetString(f.key)
		if err != nil {
			return err
		}
		*f.dst = s
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
// Typed fields are only written if they were present before or are not empty.
func (i Image) MarshalJSON() ([]byte, error) {
	out := i.raw.clone()
	fields := []struct {
		key   string
		value string
	}{
		{"size", i.Size},
		{"scale", i.Scale},
		{"idiom", i.Idiom},
		{"filename", i.Filename},
	}
	for _, f := range fields {
		if f.value == "" && !out.Has(f.key) {
			continue
		}
		if err := out.SetString(f.key, f.value); err != nil {
			return nil, err
		}
	}
	return out.MarshalJSON()
}
