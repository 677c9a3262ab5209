// Package video renders video files to text, either interactively
// through a bounded frame cache or end-to-end in batch.
package video

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// Decoder yields individual frames of a video by index. Seeking is
// stateful on the underlying handle, so callers serialize access.
type Decoder interface {
	// FrameCount reports the number of frames the container declares.
	FrameCount() int

	// ReadFrame seeks to frame idx and decodes it. Seeking may land
	// on the nearest keyframe-reachable frame.
	ReadFrame(idx int) (image.Image, error)

	// Close releases the underlying handle.
	Close() error
}

// OpenFunc opens a decoder for a video file. OpenFile is the
// production opener; tests substitute fakes.
type OpenFunc func(path string) (Decoder, error)

// fileDecoder reads frames from a video file through OpenCV.
type fileDecoder struct {
	vc    *gocv.VideoCapture
	mat   gocv.Mat
	count int
}

// OpenFile opens a video file for frame-indexed decoding.
func OpenFile(path string) (Decoder, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	vc, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	return &fileDecoder{
		vc:    vc,
		mat:   gocv.NewMat(),
		count: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

func (d *fileDecoder) FrameCount() int { return d.count }

func (d *fileDecoder) ReadFrame(idx int) (image.Image, error) {
	d.vc.Set(gocv.VideoCapturePosFrames, float64(idx))
	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, fmt.Errorf("%w: frame %d", ErrNoFrame, idx)
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrNoFrame, idx, err)
	}
	return img, nil
}

func (d *fileDecoder) Close() error {
	d.mat.Close()
	return d.vc.Close()
}
