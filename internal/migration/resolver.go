package migration

import (
	"context"
	"sort"

	"github.com/loykin/sqlrun/internal/store"
)

// Registry is the persisted record of applied migrations.
type Registry interface {
	EnsureSchema(ctx context.Context) error
	ListApplied(ctx context.Context) ([]string, error)
	RecordApplied(ctx context.Context, q store.Querier, name string) error
}

// Resolve returns candidates that are not in applied, without duplicates,
// sorted ascending. Identifiers carry a fixed-width timestamp prefix so string
// order is chronological order.
func Resolve(candidates, applied []string) []string {
	done := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		done[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	pending := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if _, ok := done[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		pending = append(pending, name)
	}
	sort.Strings(pending)
	return pending
}

// Pending ensures the registry exists, reads it and resolves candidates against it.
func Pending(ctx context.Context, reg Registry, candidates []string) ([]string, error) {
	if err := reg.EnsureSchema(ctx); err != nil {
		return nil, SchemaError(err)
	}
	applied, err := reg.ListApplied(ctx)
	if err != nil {
		return nil, SchemaError(err)
	}
	return Resolve(candidates, applied), nil
}
