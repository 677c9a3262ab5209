package camera

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
)

const (
	// loopDelay caps loop tightness when the device outpaces the
	// consumer.
	loopDelay = 10 * time.Millisecond

	// statsWindow is the minimum wall-clock span between throughput
	// reports.
	statsWindow = time.Second
)

// Options tune a live capture session.
type Options struct {
	// Mirror flips each frame horizontally before rendering.
	Mirror bool

	// FrameSkip processes every FrameSkip-th captured frame; the rest
	// are discarded for throughput. Values below 1 are treated as 1
	// (process every frame).
	FrameSkip int

	// OnFrame receives each rendered text block.
	OnFrame func(block string)

	// OnStats receives a throughput report about once per second.
	OnStats func(Stats)

	// OnStop fires exactly once when the loop ends, after the device
	// is released: nil after Stop, the read error after a disconnect.
	// Disconnects are a status change, not a failure of the session.
	OnStop func(err error)
}

// Stats is a point-in-time report of live capture throughput.
type Stats struct {
	// FPS is the processed frame rate over the last report window.
	FPS float64 `json:"fps"`

	// RenderMS is the duration of the most recent render in
	// milliseconds.
	RenderMS float64 `json:"render_ms"`

	// Captured counts frames read from the device since start.
	Captured int64 `json:"captured"`

	// Processed counts frames rendered since start.
	Processed int64 `json:"processed"`
}

// Session is one live capture loop over an open device. It runs on a
// dedicated goroutine so reads never block the caller, and stops
// cooperatively: the running flag is checked at the top of every
// iteration and the device is released exactly once.
type Session struct {
	src  FrameSource
	dev  Device
	cfg  ascii.Config
	opts Options

	running   atomic.Bool
	done      chan struct{}
	release   sync.Once
	captured  atomic.Int64
	processed atomic.Int64
}

func newSession(src FrameSource, dev Device, cfg ascii.Config, opts Options) *Session {
	if opts.FrameSkip < 1 {
		opts.FrameSkip = 1
	}
	s := &Session{
		src:  src,
		dev:  dev,
		cfg:  cfg,
		opts: opts,
		done: make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

// Device returns the descriptor this session captures from.
func (s *Session) Device() Device { return s.dev }

// Stats returns a snapshot of the session's running totals.
func (s *Session) Stats() Stats {
	return Stats{
		Captured:  s.captured.Load(),
		Processed: s.processed.Load(),
	}
}

// Done is closed once the loop has ended and the device is released.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop ends the loop cooperatively and blocks until the device is
// released. Safe to call more than once.
func (s *Session) Stop() {
	s.running.Store(false)
	<-s.done
}

func (s *Session) run() {
	reason := s.loop()
	s.close()
	if s.opts.OnStop != nil {
		s.opts.OnStop(reason)
	}
	close(s.done)
}

// loop reads, skips, mirrors, renders, and reports until stopped or
// the device stops yielding frames. The returned error is the read
// failure that ended the stream, or nil on a cooperative stop.
func (s *Session) loop() error {
	skip := int64(s.opts.FrameSkip)
	windowStart := time.Now()
	windowFrames := 0
	var lastRender time.Duration

	for s.running.Load() {
		img, err := s.src.Read()
		if err != nil {
			log.Info("capture stream ended", "device", s.dev.String(), "error", err)
			return err
		}

		if s.captured.Add(1)%skip == 0 {
			if s.opts.Mirror {
				img = flipHorizontal(img)
			}
			start := time.Now()
			block := ascii.Render(img, s.cfg)
			lastRender = time.Since(start)

			s.processed.Add(1)
			windowFrames++
			if s.opts.OnFrame != nil {
				s.opts.OnFrame(block)
			}
		}

		if elapsed := time.Since(windowStart); elapsed >= statsWindow {
			if s.opts.OnStats != nil {
				s.opts.OnStats(Stats{
					FPS:       float64(windowFrames) / elapsed.Seconds(),
					RenderMS:  float64(lastRender.Microseconds()) / 1000.0,
					Captured:  s.captured.Load(),
					Processed: s.processed.Load(),
				})
			}
			windowFrames = 0
			windowStart = time.Now()
		}

		time.Sleep(loopDelay)
	}
	return nil
}

func (s *Session) close() {
	s.release.Do(func() {
		if err := s.src.Close(); err != nil {
			log.Warn("device close failed", "device", s.dev.String(), "error", err)
		}
	})
}

// flipHorizontal mirrors img around its vertical axis.
func flipHorizontal(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Max.X-1-x, b.Min.Y+y))
		}
	}
	return out
}
