package migration

import (
	"errors"
	"strings"

	"github.com/loykin/sqlrun/internal/store"
)

// Error kinds. Every failure returned by this package matches exactly one of
// them through errors.Is. Nothing is retried.
var (
	ErrDirectoryRead      = errors.New("cannot read migration directory")
	ErrFileRead           = errors.New("cannot read migration file")
	ErrConnection         = errors.New("cannot connect to database")
	ErrSchema             = errors.New("cannot prepare migration registry")
	ErrMigrationExecution = errors.New("migration failed")
	ErrDuplicateMigration = store.ErrDuplicateMigration
)

// Error carries the migration identifier or path a failure relates to.
type Error struct {
	Kind error
	Name string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, name, path string, err error) *Error {
	return &Error{Kind: kind, Name: name, Path: path, Err: err}
}

// ConnectionError wraps a failure to open the database session.
func ConnectionError(err error) error {
	return newError(ErrConnection, "", "", err)
}

// SchemaError wraps a failure to create or read the registry table.
func SchemaError(err error) error {
	return newError(ErrSchema, "", "", err)
}
