package ascii

import (
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/talantvacheslav/ascii-converter/internal/httpc"
	"github.com/talantvacheslav/ascii-converter/internal/log"
)

// Store persists configuration between runs. Both operations are
// best-effort from the converter's point of view: a failing store
// never affects conversion.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// Converter owns the active configuration and the current source
// image, and exposes the single-image conversion surface. Video and
// camera flows reuse Render with config snapshots taken here.
type Converter struct {
	mu         sync.RWMutex
	config     Config
	img        image.Image
	source     string
	format     string
	lastRender string

	store Store
}

// NewConverter creates a converter seeded from store, falling back to
// defaults when the store is nil or unreadable.
func NewConverter(store Store) *Converter {
	cfg := DefaultConfig()
	if store != nil {
		if loaded, err := store.Load(); err == nil {
			cfg = loaded
		} else {
			log.Debug("config load failed, using defaults", "error", err)
		}
	}
	return &Converter{config: cfg, store: store}
}

// Config returns a snapshot of the current configuration.
func (c *Converter) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// SetConfig replaces the configuration and persists it.
func (c *Converter) SetConfig(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()

	c.persist(cfg)
	return nil
}

// UpdateConfig merges recognized keys from params into the
// configuration and persists the result. Unknown keys are ignored.
func (c *Converter) UpdateConfig(params map[string]interface{}) error {
	c.mu.RLock()
	cfg := c.config.Apply(params)
	c.mu.RUnlock()

	return c.SetConfig(cfg)
}

// ResetConfig restores defaults, keeping the last image reference,
// and persists.
func (c *Converter) ResetConfig() {
	c.mu.Lock()
	last := c.config.LastImage
	c.config = DefaultConfig()
	c.config.LastImage = last
	cfg := c.config
	c.mu.Unlock()

	c.persist(cfg)
}

// Load reads an image from a local path or an http(s) URL and makes
// it the current conversion source. Local loads are recorded as the
// last image and persisted.
func (c *Converter) Load(source string) error {
	remote := strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")

	var (
		img    image.Image
		format string
		err    error
	)
	if remote {
		img, format, err = fetchImage(source)
	} else {
		img, format, err = openImage(source)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.img = img
	c.source = source
	c.format = format
	if !remote {
		c.config.LastImage = source
	}
	cfg := c.config
	c.mu.Unlock()

	if !remote {
		c.persist(cfg)
	}
	log.Debug("image loaded", "source", source, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}

// LoadLast reloads the most recently loaded local image.
func (c *Converter) LoadLast() error {
	last := c.Config().LastImage
	if last == "" {
		return fmt.Errorf("%w: no previous image", ErrNotFound)
	}
	return c.Load(last)
}

// Render converts the loaded image with the current configuration.
func (c *Converter) Render() (string, error) {
	return c.RenderWith(c.Config())
}

// RenderWith converts the loaded image with an explicit configuration
// snapshot, leaving the stored configuration untouched.
func (c *Converter) RenderWith(cfg Config) (string, error) {
	c.mu.RLock()
	img := c.img
	c.mu.RUnlock()
	if img == nil {
		return "", ErrNoImage
	}

	out := Render(img, cfg)

	c.mu.Lock()
	c.lastRender = out
	c.mu.Unlock()
	return out, nil
}

// SaveRendered writes the last rendered text block to path as UTF-8.
// An empty path synthesizes a non-colliding ascii_art filename in the
// working directory. Returns the path written.
func (c *Converter) SaveRendered(path string) (string, error) {
	c.mu.RLock()
	text := c.lastRender
	c.mu.RUnlock()
	if text == "" {
		return "", ErrNoRender
	}

	if path == "" {
		path = nextArtPath(".")
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write rendered text: %w", err)
	}
	log.Debug("rendered text saved", "path", path, "bytes", len(text))
	return path, nil
}

// Info describes the currently loaded image.
type Info struct {
	Source string `json:"source"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ImageInfo reports the loaded image, or false when nothing is loaded.
func (c *Converter) ImageInfo() (Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.img == nil {
		return Info{}, false
	}
	b := c.img.Bounds()
	return Info{Source: c.source, Format: c.format, Width: b.Dx(), Height: b.Dy()}, true
}

// persist writes cfg through to the store.
func (c *Converter) persist(cfg Config) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(cfg); err != nil {
		log.Debug("config save failed", "error", err)
	}
}

func fetchImage(url string) (image.Image, string, error) {
	resp, err := httpc.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %s", ErrFetch, resp.Status)
	}
	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

func openImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// nextArtPath returns the first unused ascii_art output name in dir:
// ascii_art.txt, then ascii_art_1.txt, ascii_art_2.txt, and so on.
func nextArtPath(dir string) string {
	path := filepath.Join(dir, "ascii_art.txt")
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("ascii_art_%d.txt", i))
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
