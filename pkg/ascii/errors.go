package ascii

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrNoImage is returned when rendering is requested before an
	// image has been loaded.
	ErrNoImage = errors.New("ascii: no image loaded")

	// ErrNoRender is returned when saving is requested before anything
	// has been rendered.
	ErrNoRender = errors.New("ascii: nothing rendered yet")

	// ErrNotFound is returned when a local image path does not exist.
	ErrNotFound = errors.New("ascii: image not found")

	// ErrFetch is returned when a remote image cannot be retrieved.
	ErrFetch = errors.New("ascii: remote fetch failed")

	// ErrDecode is returned for corrupt or unsupported image data.
	ErrDecode = errors.New("ascii: cannot decode image")
)
