package store

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableName is a registry table, optionally qualified by a schema.
type TableName struct {
	Schema string
	Name   string
}

// ParseTableName accepts "table" or "schema.table". Each part must be a plain
// SQL identifier; parts are always quoted when rendered.
func ParseTableName(s string) (TableName, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	var tn TableName
	switch len(parts) {
	case 1:
		tn = TableName{Name: parts[0]}
	case 2:
		tn = TableName{Schema: parts[0], Name: parts[1]}
	default:
		return TableName{}, fmt.Errorf("%w: %q", ErrInvalidTableName, s)
	}
	if !identifierRe.MatchString(tn.Name) || (tn.Schema != "" && !identifierRe.MatchString(tn.Schema)) {
		return TableName{}, fmt.Errorf("%w: %q", ErrInvalidTableName, s)
	}
	if len(parts) == 2 && tn.Schema == "" {
		return TableName{}, fmt.Errorf("%w: %q", ErrInvalidTableName, s)
	}
	return tn, nil
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Quoted renders the name for use in SQL text.
func (t TableName) Quoted() string {
	if t.Schema == "" {
		return quoteIdent(t.Name)
	}
	return quoteIdent(t.Schema) + "." + quoteIdent(t.Name)
}

// QuotedSchema is empty for unqualified tables.
func (t TableName) QuotedSchema() string {
	if t.Schema == "" {
		return ""
	}
	return quoteIdent(t.Schema)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
