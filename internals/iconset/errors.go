package iconset

import (
	"errors"
	"fmt"
)

// Kind is the kind of failure of a regeneration
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that did not come from this package
	KindUnknown Kind = iota
	// InvalidArgument means the options were incomplete. Nothing was touched
	InvalidArgument
	// ManifestNotFound means the asset set has no Contents.json
	ManifestNotFound
	// ManifestInvalid means Contents.json could not be read or parsed
	ManifestInvalid
	// InvalidImageSpec means an image entry has an unusable size or scale
	InvalidImageSpec
	// RenderFailure means the source could not be read or an image could not be rendered or written
	RenderFailure
	// PersistFailure means the updated manifest could not be written
	PersistFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case ManifestNotFound:
		return "manifest not found"
	case ManifestInvalid:
		return "manifest invalid"
	case InvalidImageSpec:
		return "invalid image spec"
	case RenderFailure:
		return "render failure"
	case PersistFailure:
		return "persist failure"
	default:
		return "unknown"
	}
}

// Error is returned by Generate
type Error struct {
	Kind Kind
	// Path is the file this error is about (if any)
	Path string
	// Index of the image entry this error is about, -1 if it is about none
	Index int
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" (image %d)", e.Index)
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err or KindUnknown if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Index: -1, Err: err}
}
