package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
)

// The store must satisfy the converter's persistence seam.
var _ ascii.Store = (*Store)(nil)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "settings-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	store, err := NewStore(filepath.Join(tmpDir, "ascii_config.json"))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create store: %v", err)
	}

	return store, func() { os.RemoveAll(tmpDir) }
}

func TestStoreLoadMissing(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("expected missing file to load defaults without error, got %v", err)
	}
	if cfg.Width != 100 || cfg.Charset != ascii.DefaultCharset {
		t.Errorf("expected default config, got width %d charset %q", cfg.Width, cfg.Charset)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	cfg := ascii.DefaultConfig()
	cfg.Width = 64
	cfg.Invert = true
	cfg.LastImage = "/tmp/cat.png"

	if err := store.Save(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Width != 64 {
		t.Errorf("expected width 64, got %d", loaded.Width)
	}
	if !loaded.Invert {
		t.Error("expected invert to persist")
	}
	if loaded.LastImage != "/tmp/cat.png" {
		t.Errorf("expected last image to persist, got %q", loaded.LastImage)
	}
}

func TestStoreBackfill(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	// A file from an older schema that only knows about width.
	partial := `{"version":1,"config":{"width":42}}`
	if err := os.WriteFile(store.Path(), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write partial config: %v", err)
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load partial config: %v", err)
	}
	if cfg.Width != 42 {
		t.Errorf("expected stored width 42, got %d", cfg.Width)
	}
	if cfg.Brightness != 1.0 {
		t.Errorf("expected missing brightness backfilled to 1.0, got %v", cfg.Brightness)
	}
	if cfg.Charset != ascii.DefaultCharset {
		t.Errorf("expected missing charset backfilled, got %q", cfg.Charset)
	}
	if cfg.LineSpacing != 0.55 {
		t.Errorf("expected missing line spacing backfilled, got %v", cfg.LineSpacing)
	}
}

func TestStoreCorrupt(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	if err := os.WriteFile(store.Path(), []byte("{nope"), 0644); err != nil {
		t.Fatalf("failed to write corrupt config: %v", err)
	}

	cfg, err := store.Load()
	if err == nil {
		t.Error("expected parse error for corrupt file")
	}
	if cfg.Width != 100 {
		t.Errorf("expected defaults alongside the error, got width %d", cfg.Width)
	}
}

func TestStoreNoTempResidue(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	if err := store.Save(ascii.DefaultConfig()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be renamed away after save")
	}
}

func TestStoreConcurrentSaves(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			cfg := ascii.DefaultConfig()
			cfg.Width = 10 + i
			store.Save(cfg)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load after concurrent saves: %v", err)
	}
	if cfg.Width < 10 || cfg.Width > 19 {
		t.Errorf("expected one of the saved widths, got %d", cfg.Width)
	}
}
