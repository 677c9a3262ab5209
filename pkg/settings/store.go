// Package settings persists converter configuration between runs.
// The store is best-effort: the conversion pipeline never depends on
// a load or save succeeding.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/talantvacheslav/ascii-converter/pkg/ascii"
)

// DefaultPath is the config file used when no explicit path is given.
const DefaultPath = "ascii_config.json"

// Store reads and writes the configuration as a JSON file.
type Store struct {
	path string
	mu   sync.RWMutex
}

// storeData is the JSON structure for the store file.
type storeData struct {
	Version   int          `json:"version"`
	UpdatedAt string       `json:"updated_at"`
	Config    ascii.Config `json:"config"`
}

const currentVersion = 1

// NewStore creates a store at the given path.
// If the file doesn't exist, it will be created on first save.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Store{path: path}, nil
}

// Load reads the stored configuration. Keys absent from the file keep
// their default values, so older files stay loadable as the schema
// grows. A missing file is not an error; a corrupt one returns
// defaults alongside the parse error.
func (s *Store) Load() (ascii.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := ascii.DefaultConfig()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	stored := storeData{Config: cfg}
	if err := json.Unmarshal(data, &stored); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return stored.Config, nil
}

// Save writes the configuration to disk.
func (s *Store) Save(cfg ascii.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := storeData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Config:    cfg,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Path returns the file path of the store.
func (s *Store) Path() string {
	return s.path
}
