/*
Package contents reads and writes the "Contents.json" manifest of an Xcode asset set.

Only the fields this module cares about are typed. Every other field, on the top level and on each
image entry, is kept verbatim and in its original order so that rewriting a manifest only changes
what was actually changed.
*/
package contents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Filename is the name of the manifest inside an asset set directory
const Filename = "Contents.json"

// Indent is the indentation used when writing a manifest
const Indent = "  "

var (
	// ErrNoImages is returned if the manifest has no "images" array
	ErrNoImages = errors.New(`manifest has no "images" array`)
)

// Contents is a parsed Contents.json
type Contents struct {
	// Images are the image entries in document order
	Images []*Image

	doc Object
}

// Parse parses a Contents.json document
func Parse(data []byte) (*Contents, error) {
	c := &Contents{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Read reads and parses the manifest at path.
// Errors from reading the file are returned unwrapped, so os.IsNotExist works on them.
func Read(path string) (*Contents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Field returns a top-level field that is not "images"
func (c *Contents) Field(key string) (json.RawMessage, bool) {
	if key == "images" {
		return nil, false
	}
	return c.doc.Get(key)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Contents) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.doc); err != nil {
		return err
	}
	raw, ok := c.doc.Get("images")
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ErrNoImages
	}
	images := []*Image{}
	if err := json.Unmarshal(raw, &images); err != nil {
		return fmt.Errorf(`field "images": %w`, err)
	}
	for i, img := range images {
		if img == nil {
			return fmt.Errorf(`field "images": entry %d is null`, i)
		}
	}
	c.Images = images
	return nil
}

// MarshalJSON implements json.Marshaler
func (c Contents) MarshalJSON() ([]byte, error) {
	images := c.Images
	if images == nil {
		images = []*Image{}
	}
	raw, err := marshalNoEscape(images)
	if err != nil {
		return nil, err
	}
	doc := c.doc.clone()
	doc.Set("images", raw)
	return doc.MarshalJSON()
}

// Bytes returns the manifest pretty printed with two space indentation and no trailing newline
func (c *Contents) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
