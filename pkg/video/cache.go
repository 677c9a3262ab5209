package video

import (
	"fmt"
	"sync"

	"github.com/talantvacheslav/ascii-converter/internal/log"
	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
)

// DefaultCacheSize bounds how many rendered frames the interactive
// cache retains.
const DefaultCacheSize = 100

// FrameCache renders video frames on demand and memoizes rendered
// text blocks so interactive scrubbing never reprocesses an unchanged
// frame. Entries are keyed by frame index plus the rendering-relevant
// configuration; eviction is insertion-order FIFO, independent of
// access recency.
//
// One mutex serializes all access: seeking is stateful on the decoder
// handle, so at most one seek+decode is in flight.
type FrameCache struct {
	mu      sync.Mutex
	open    OpenFunc
	dec     Decoder
	path    string
	entries map[string]string
	order   []string
	size    int

	hits   int
	misses int
}

// NewFrameCache creates a frame cache with the default capacity,
// decoding through OpenFile.
func NewFrameCache() *FrameCache {
	return NewFrameCacheWith(OpenFile, DefaultCacheSize)
}

// NewFrameCacheWith creates a frame cache with a custom opener and
// capacity.
func NewFrameCacheWith(open OpenFunc, capacity int) *FrameCache {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}
	return &FrameCache{
		open:    open,
		entries: make(map[string]string),
		size:    capacity,
	}
}

// Open prepares a video file for interactive frame access. Opening
// over an already-open cache releases the previous decoder and drops
// every cached entry first.
func (c *FrameCache) Open(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()

	dec, err := c.open(path)
	if err != nil {
		return err
	}
	c.dec = dec
	c.path = path
	log.Debug("video opened", "path", path, "frames", dec.FrameCount())
	return nil
}

// Path returns the currently open file, or "" when closed.
func (c *FrameCache) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// FrameCount reports the frame count of the open video.
func (c *FrameCache) FrameCount() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dec == nil {
		return 0, ErrClosed
	}
	return c.dec.FrameCount(), nil
}

// GetFrame returns the rendered text for frame idx under cfg,
// decoding only on a cache miss. A failed read is recoverable: the
// session stays open and other frames remain requestable.
func (c *FrameCache) GetFrame(idx int, cfg ascii.Config) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dec == nil {
		return "", ErrClosed
	}

	key := cacheKey(idx, cfg)
	if block, ok := c.entries[key]; ok {
		c.hits++
		return block, nil
	}

	img, err := c.dec.ReadFrame(idx)
	if err != nil {
		return "", err
	}

	block := ascii.Render(img, cfg)
	c.insertLocked(key, block)
	c.misses++
	return block, nil
}

// Stats reports cache hits, misses, and the current entry count.
func (c *FrameCache) Stats() (hits, misses, entries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// Close releases the decoder and drops all cached frames. Safe to
// call repeatedly.
func (c *FrameCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
	return nil
}

func (c *FrameCache) releaseLocked() {
	if c.dec != nil {
		if err := c.dec.Close(); err != nil {
			log.Warn("decoder close failed", "path", c.path, "error", err)
		}
		c.dec = nil
	}
	c.path = ""
	c.entries = make(map[string]string)
	c.order = c.order[:0]
	c.hits = 0
	c.misses = 0
}

func (c *FrameCache) insertLocked(key, block string) {
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = block
	for len(c.entries) > c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func cacheKey(idx int, cfg ascii.Config) string {
	return fmt.Sprintf("%d|%s", idx, cfg.RenderKey())
}
