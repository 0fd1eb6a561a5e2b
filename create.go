package sqlrun

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/sqlrun/internal/common"
	"github.com/loykin/sqlrun/internal/constants"
	"github.com/loykin/sqlrun/internal/util"
)

// CreateOptions describes a migration file to create.
type CreateOptions struct {
	Name string
	Dir  string
	// Now defaults to time.Now.
	Now func() time.Time
}

const migrationTemplate = `-- Migration: %s
-- Created at: %s
--
-- Statements below run as one unit, inside a single transaction unless
-- transactional mode is off. There is no down migration.

`

// MigrationID returns the identifier for name created at t:
// yyyy_mm_dd_hhiiss_<snake_case_name>.
func MigrationID(name string, t time.Time) (string, error) {
	slug := util.ToSnakeCase(name)
	if slug == "" {
		return "", ErrInvalidName
	}
	return t.Format(constants.IdentifierTimeLayout) + "_" + slug, nil
}

// CreateMigration writes an empty timestamped migration file and returns its path.
// The directory is created when missing; an existing file is never overwritten.
func CreateMigration(opts CreateOptions) (string, error) {
	dir, ok := util.TrimEmptyCheck(opts.Dir)
	if !ok {
		return "", ErrDirRequired
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	ts := now()
	id, err := MigrationID(opts.Name, ts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, constants.DirPerm); err != nil {
		return "", fmt.Errorf("failed to create migration directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, id+constants.MigrationFileExt)
	// #nosec G304 -- path is built from the configured migrations directory
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePerm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("migration file already exists: %s", path)
		}
		return "", fmt.Errorf("failed to create migration file: %w", err)
	}
	_, werr := fmt.Fprintf(f, migrationTemplate, id, ts.Format(time.RFC3339))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", fmt.Errorf("failed to write migration file %s: %w", path, werr)
	}

	common.GetLogger().WithComponent("create").Info("migration created", "path", path)
	return path, nil
}
