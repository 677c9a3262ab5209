// Package camera discovers capture devices across platforms and runs
// the live capture loop that feeds rendered frames to a display sink.
package camera

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Device describes a capture device proven usable at enumeration
// time: it opened and yielded at least one frame. Descriptors are
// valid only until the next enumeration.
type Device struct {
	// Index is the platform device number (0 for the default camera).
	Index int `json:"index"`

	// Path is the device node when the platform exposes one, such as
	// /dev/video0 on Linux.
	Path string `json:"path,omitempty"`

	// Label is the human-readable name reported by the platform
	// listing tool, when available.
	Label string `json:"label,omitempty"`
}

// String renders the descriptor for logs and error messages.
func (d Device) String() string {
	switch {
	case d.Path != "" && d.Label != "":
		return fmt.Sprintf("%s (%s)", d.Path, d.Label)
	case d.Path != "":
		return d.Path
	default:
		return fmt.Sprintf("index %d", d.Index)
	}
}

// FrameSource yields frames from an open capture device. Reads are
// stateful on the underlying handle, so only the owning loop calls
// Read.
type FrameSource interface {
	// Read captures and decodes one frame.
	Read() (image.Image, error)

	// Close releases the device handle.
	Close() error
}

// OpenDeviceFunc opens a capture source for a device. OpenDevice is
// the production opener; tests substitute fakes.
type OpenDeviceFunc func(dev Device) (FrameSource, error)

// deviceSource reads frames from a camera through OpenCV.
type deviceSource struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens a capture device, preferring the device node path
// when the descriptor carries one.
func OpenDevice(dev Device) (FrameSource, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	if dev.Path != "" {
		vc, err = gocv.OpenVideoCapture(dev.Path)
	} else {
		vc, err = gocv.OpenVideoCapture(dev.Index)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceOpen, dev, err)
	}
	return &deviceSource{vc: vc, mat: gocv.NewMat()}, nil
}

func (s *deviceSource) Read() (image.Image, error) {
	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, ErrDisconnected
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return img, nil
}

func (s *deviceSource) Close() error {
	s.mat.Close()
	return s.vc.Close()
}

// ProbeFunc reports whether a candidate device is usable. The
// production probe opens the device, reads one frame, and releases
// it immediately.
type ProbeFunc func(dev Device) bool

// ProbeDevice is the production probe.
func ProbeDevice(dev Device) bool {
	src, err := OpenDevice(dev)
	if err != nil {
		return false
	}
	defer src.Close()

	_, err = src.Read()
	return err == nil
}
