package store

import "errors"

var (
	// ErrDuplicateMigration is returned when the registry already holds a migration name.
	ErrDuplicateMigration = errors.New("migration already recorded")
	ErrInvalidTableName   = errors.New("invalid registry table name")
	ErrUnsupportedDriver  = errors.New("unsupported database driver")
)
