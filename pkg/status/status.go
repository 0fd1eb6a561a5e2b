package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/sqlrun"
)

// Status display constants
const (
	defaultHistoryLimit = 10 // Default number of history entries to show
	noneApplied         = "none"
)

// HistoryItem is one row of the registry table.
// AppliedAt is an RFC3339 timestamp in UTC.
type HistoryItem struct {
	ID        int64
	Name      string
	AppliedAt string
}

// Info aggregates status information: latest applied migration, applied
// history oldest-first and the pending identifiers in apply order.
type Info struct {
	Current string
	History []HistoryItem
	Pending []string
}

// FromStore collects status information from an opened store. candidates are
// the identifiers found in the migration directory.
func FromStore(ctx context.Context, st *sqlrun.Store, candidates []string) (Info, error) {
	records, pending, err := sqlrun.StatusFromStore(ctx, st, candidates)
	if err != nil {
		return Info{}, err
	}
	return build(records, pending), nil
}

// FromConfig opens the database described by cfg, collects status, and closes it.
func FromConfig(ctx context.Context, cfg sqlrun.Config) (Info, error) {
	records, pending, err := sqlrun.NewMigrator(cfg).Status(ctx)
	if err != nil {
		return Info{}, err
	}
	return build(records, pending), nil
}

func build(records []sqlrun.Record, pending []string) Info {
	info := Info{Current: noneApplied, Pending: pending}
	info.History = make([]HistoryItem, 0, len(records))
	for _, r := range records {
		info.History = append(info.History, HistoryItem{
			ID:        r.ID,
			Name:      r.Name,
			AppliedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if n := len(info.History); n > 0 {
		info.Current = info.History[n-1].Name
	}
	return info
}

func (i Info) header() string {
	pending := "[]"
	if len(i.Pending) > 0 {
		pending = "[" + strings.Join(i.Pending, " ") + "]"
	}
	return fmt.Sprintf("current: %s\napplied: %d\npending: %s\n", i.Current, len(i.History), pending)
}

// FormatHuman returns a human-friendly multiline string for CLI output.
// history=true appends every applied migration oldest-first.
func (i Info) FormatHuman(history bool) string {
	base := i.header()
	if !history {
		return base
	}
	return base + formatHistory(i.History)
}

// FormatHumanWithLimit prints status like FormatHuman, but when history=true it prints
// newest-first up to the provided limit. If all=true, the entire history is printed
// newest-first and limit is ignored. Default behavior when limit<=0 is 10.
func (i Info) FormatHumanWithLimit(history bool, limit int, all bool) string {
	base := i.header()
	if !history {
		return base
	}
	rev := make([]HistoryItem, len(i.History))
	for idx := range i.History {
		rev[len(i.History)-1-idx] = i.History[idx]
	}
	items := rev
	if !all {
		if limit <= 0 {
			limit = defaultHistoryLimit
		}
		if len(items) > limit {
			items = items[:limit]
		}
	}
	return base + formatHistory(items)
}

func formatHistory(items []HistoryItem) string {
	if len(items) == 0 {
		return "history: \n"
	}
	var b strings.Builder
	b.WriteString("history:\n")
	for _, h := range items {
		fmt.Fprintf(&b, "#%d %s at=%s\n", h.ID, h.Name, h.AppliedAt)
	}
	return b.String()
}
