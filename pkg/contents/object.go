package contents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotAnObject is returned when a JSON value that should be an object is something else
var ErrNotAnObject = errors.New("not a JSON object")

// Object is a JSON object that keeps the order of its keys.
// Values are kept as raw JSON and are written back exactly as they were read.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// Keys returns the keys in document order
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys
func (o *Object) Len() int {
	return len(o.keys)
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Get returns the raw value of key
func (o *Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set replaces the value of key. A key that is not present yet is appended.
func (o *Object) Set(key string, value json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// GetString decodes key as a string. ok is false if the key is missing.
func (o *Object) GetString(key string) (s string, ok bool, err error) {
	raw, ok := o.values[key]
	if !ok {
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, fmt.Errorf("field %q: %w", key, err)
	}
	return s, true, nil
}

// SetString sets key to s. The raw value is left alone if it already decodes to s.
func (o *Object) SetString(key string, s string) error {
	if current, ok, err := o.GetString(key); ok && err == nil && current == s {
		return nil
	}
	raw, err := marshalNoEscape(s)
	if err != nil {
		return err
	}
	o.Set(key, raw)
	return nil
}

// clone returns a copy that can be modified without touching o
func (o Object) clone() Object {
	c := Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]json.RawMessage, len(o.values)+1),
	}
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotAnObject
	}

	o.keys = o.keys[:0]
	o.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		// last one wins, like encoding/json does for maps
		if _, dup := o.values[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.values[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (o Object) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encKey, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encKey)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
