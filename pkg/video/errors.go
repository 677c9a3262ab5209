package video

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrNotFound is returned when the video path does not exist.
	ErrNotFound = errors.New("video: file not found")

	// ErrOpen is returned when a video file cannot be opened.
	ErrOpen = errors.New("video: cannot open file")

	// ErrNoFrame is returned when a frame cannot be decoded, such as
	// an index past the end of the stream. Recoverable: the session
	// stays usable for other frames.
	ErrNoFrame = errors.New("video: no frame available")

	// ErrClosed is returned when frames are requested from a cache
	// with no open video.
	ErrClosed = errors.New("video: no video open")
)
