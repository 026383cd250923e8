package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/P-ict0/HourTrack/internal/domain"
)

const (
	defaultFileName = "data.json"

	dataDirPerm  os.FileMode = 0o700
	dataFilePerm os.FileMode = 0o600
)

// Store persists the registry as a single JSON file, rewritten wholesale
// on every save. There is no cross-process locking: concurrent
// invocations race and the last writer wins.
type Store struct {
	path string
}

// DefaultDir returns the per-user data directory (~/.hourtrack).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".hourtrack"), nil
}

// Open binds a store to dataDir/data.json, creating the directory if
// missing.
func Open(dataDir string) (*Store, error) {
	return OpenFile(filepath.Join(dataDir, defaultFileName))
}

// OpenFile binds a store to an explicit registry file path.
func OpenFile(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dataDirPerm); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry, returning an empty one when no state exists.
func (s *Store) Load() (*domain.Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewRegistry(), nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var reg domain.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", s.path, err)
	}
	if reg.Projects == nil {
		reg.Projects = map[string]*domain.Project{}
	}
	return &reg, nil
}

// Save writes the whole registry. The write goes through a temp file in
// the same directory plus a rename, so a crashed writer never leaves a
// torn registry behind.
func (s *Store) Save(reg *domain.Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		return fmt.Errorf("create temp registry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Chmod(dataFilePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp registry: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
