package camera

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrDeviceOpen is returned when a capture device cannot be
	// opened for a live session.
	ErrDeviceOpen = errors.New("camera: cannot open device")

	// ErrDisconnected is returned when an open device stops yielding
	// frames mid-stream. A live loop treats this as end of stream,
	// not a fatal error.
	ErrDisconnected = errors.New("camera: device disconnected")
)
