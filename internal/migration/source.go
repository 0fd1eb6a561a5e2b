package migration

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/sqlrun/internal/constants"
)

// Source lists and loads migration scripts.
type Source interface {
	List() ([]string, error)
	Read(name string) (string, error)
}

// DirSource reads <identifier>.sql files from a single directory.
type DirSource struct {
	Dir string
}

// List returns the identifiers of every .sql file in Dir in directory order.
// Subdirectories and other files are ignored.
func (s DirSource) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, newError(ErrDirectoryRead, "", s.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), constants.MigrationFileExt)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Read returns the literal content of the migration file.
func (s DirSource) Read(name string) (string, error) {
	path := s.Path(name)
	// #nosec G304 -- name comes from List over the configured directory
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", newError(ErrFileRead, name, path, err)
	}
	return string(b), nil
}

// Path returns the file backing name.
func (s DirSource) Path(name string) string {
	return filepath.Join(s.Dir, name+constants.MigrationFileExt)
}
