package form

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a named form does not exist
var ErrNotFound = errors.New("form not found")

// Repository defines the interface for form definition persistence
type Repository interface {
	// Save persists a definition under its name
	Save(def *Definition) error

	// Load retrieves a definition by name
	Load(name string) (*Definition, error)

	// Delete removes a definition
	Delete(name string) error

	// List returns all definitions sorted by name
	List() ([]*Definition, error)
}

// FilesystemRepository stores definitions as <name>.yaml files in a
// directory, ~/.numentry/forms by default.
type FilesystemRepository struct {
	dir    string
	logger *log.Logger
}

// NewFilesystemRepository creates a repository rooted at dir, creating the
// directory if needed. A nil logger uses the standard logger.
func NewFilesystemRepository(dir string, logger *log.Logger) (*FilesystemRepository, error) {
	if dir == "" {
		return nil, errors.New("forms directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create forms directory: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FilesystemRepository{dir: dir, logger: logger}, nil
}

// Dir returns the directory the repository reads and writes
func (r *FilesystemRepository) Dir() string {
	return r.dir
}

// Save writes the definition atomically using a temp file and rename
func (r *FilesystemRepository) Save(def *Definition) error {
	if def == nil {
		return errors.New("cannot save nil form")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	path, err := r.path(def.Name)
	if err != nil {
		return err
	}

	data, err := Marshal(def)
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save form file: %w", err)
	}
	return nil
}

// Load reads and validates the named definition
func (r *FilesystemRepository) Load(name string) (*Definition, error) {
	path, err := r.path(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return LoadFile(path)
}

// Delete removes the named definition
func (r *FilesystemRepository) Delete(name string) error {
	path, err := r.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete form file: %w", err)
	}
	return nil
}

// List loads every *.yaml file in the directory. Files that fail to load
// are logged and skipped.
func (r *FilesystemRepository) List() ([]*Definition, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read forms directory: %w", err)
	}

	defs := make([]*Definition, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		def, err := LoadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			r.logger.Printf("skipping form %s: %v", entry.Name(), err)
			continue
		}
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// path returns the file for name, refusing names that would escape the
// directory
func (r *FilesystemRepository) path(name string) (string, error) {
	if name == "" {
		return "", errors.New("form name cannot be empty")
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid form name %q", name)
	}
	return filepath.Join(r.dir, name+".yaml"), nil
}
