package camera

import (
	"context"
	"sync"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
)

// Manager owns device discovery and the single live capture session.
// Enumeration and session lifecycle share one lock, so probing never
// races an active capture over the same handle.
type Manager struct {
	mu      sync.Mutex
	open    OpenDeviceFunc
	enum    *Enumerator
	session *Session
}

// NewManager creates a manager capturing through OpenCV.
func NewManager() *Manager {
	return &Manager{open: OpenDevice, enum: NewEnumerator()}
}

// NewManagerWith creates a manager with a custom device opener and
// enumerator.
func NewManagerWith(open OpenDeviceFunc, enum *Enumerator) *Manager {
	if enum == nil {
		enum = NewEnumerator()
	}
	return &Manager{open: open, enum: enum}
}

// Devices discovers usable capture devices. Any active session is
// stopped first, since probing opens the same handles a session
// holds. Prior descriptors are invalidated by the new enumeration.
func (m *Manager) Devices(ctx context.Context) []Device {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	return m.enum.Devices(ctx)
}

// Start opens dev and begins a live capture loop with a snapshot of
// cfg. A prior session is stopped first; at most one loop runs at a
// time.
func (m *Manager) Start(dev Device, cfg ascii.Config, opts Options) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	src, err := m.open(dev)
	if err != nil {
		return nil, err
	}

	s := newSession(src, dev, cfg, opts)
	m.session = s
	go s.run()

	log.Info("live capture started", "device", dev.String(),
		"mirror", opts.Mirror, "frame_skip", s.opts.FrameSkip)
	return s, nil
}

// Stop ends the active session, if any, and blocks until its device
// is released.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// Active returns the running session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		select {
		case <-m.session.done:
			m.session = nil
		default:
		}
	}
	return m.session
}

func (m *Manager) stopLocked() {
	if m.session != nil {
		m.session.Stop()
		m.session = nil
		log.Info("live capture stopped")
	}
}
