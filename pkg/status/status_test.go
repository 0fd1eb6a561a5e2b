package status

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"

	"github.com/loykin/sqlrun"
)

// helper to open a temp sqlite store for status tests
func openTempStoreForStatus(t *testing.T) (*sqlrun.Store, sqlrun.Config) {
	t.Helper()
	cfg := sqlrun.DefaultConfig()
	cfg.Dir = t.TempDir()
	cfg.Driver = sqlrun.DriverSqlite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "status.db")
	st, err := sqlrun.OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, cfg
}

func TestFormatHuman_NoHistory(t *testing.T) {
	i := Info{Current: "b", History: []HistoryItem{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, Pending: []string{"c", "d"}}
	got := i.FormatHuman(false)
	want := "current: b\napplied: 2\npending: [c d]\n"
	if got != want {
		t.Fatalf("FormatHuman(false) mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestFormatHuman_EmptyHistory(t *testing.T) {
	i := Info{Current: "none"}
	got := i.FormatHuman(true)
	want := "current: none\napplied: 0\npending: []\nhistory: \n"
	if got != want {
		t.Fatalf("FormatHuman(true) mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestFormatHumanWithLimit_NewestFirstAndLimit(t *testing.T) {
	i := Info{
		Current: "m5",
		History: []HistoryItem{
			{ID: 1, Name: "m1", AppliedAt: "2025-01-01T00:00:00Z"},
			{ID: 2, Name: "m2", AppliedAt: "2025-01-01T00:01:00Z"},
			{ID: 3, Name: "m3", AppliedAt: "2025-01-01T00:02:00Z"},
			{ID: 4, Name: "m4", AppliedAt: "2025-01-01T00:03:00Z"},
			{ID: 5, Name: "m5", AppliedAt: "2025-01-01T00:04:00Z"},
		},
	}
	got := i.FormatHumanWithLimit(true, 3, false)
	re := regexp.MustCompile(`(?s)^current: m5\napplied: 5\npending: \[]\nhistory:\n#5 m5 .*\n#4 m4 .*\n#3 m3 .*\n$`)
	if !re.MatchString(got) {
		t.Fatalf("unexpected output with limit:\n%s", got)
	}
}

func TestFormatHumanWithLimit_AllIgnoresLimit(t *testing.T) {
	i := Info{
		Current: "m2",
		History: []HistoryItem{{ID: 1, Name: "m1", AppliedAt: "t1"}, {ID: 2, Name: "m2", AppliedAt: "t2"}},
	}
	got := i.FormatHumanWithLimit(true, 1, true)
	re := regexp.MustCompile(`(?s)^current: m2\napplied: 2\npending: \[]\nhistory:\n#2 m2 at=t2\n#1 m1 at=t1\n$`)
	if !re.MatchString(got) {
		t.Fatalf("unexpected output with all=true:\n%s", got)
	}
}

func TestFromStore_Empty(t *testing.T) {
	st, _ := openTempStoreForStatus(t)
	i, err := FromStore(context.Background(), st, nil)
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if i.Current != "none" || len(i.History) != 0 || len(i.Pending) != 0 {
		t.Fatalf("unexpected empty status: %+v", i)
	}
}

func TestFromStore_WithRecords(t *testing.T) {
	st, _ := openTempStoreForStatus(t)
	ctx := context.Background()

	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	for _, name := range []string{"2024_01_01_000000_a", "2024_01_03_000000_c"} {
		if err := st.RecordApplied(ctx, nil, name); err != nil {
			t.Fatalf("RecordApplied(%s): %v", name, err)
		}
	}

	candidates := []string{"2024_01_04_000000_d", "2024_01_03_000000_c", "2024_01_02_000000_b", "2024_01_01_000000_a"}
	info, err := FromStore(ctx, st, candidates)
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if info.Current != "2024_01_03_000000_c" {
		t.Fatalf("Current=%q", info.Current)
	}
	if !reflect.DeepEqual(info.Pending, []string{"2024_01_02_000000_b", "2024_01_04_000000_d"}) {
		t.Fatalf("Pending=%v", info.Pending)
	}
	if len(info.History) != 2 || info.History[0].Name != "2024_01_01_000000_a" || info.History[1].Name != "2024_01_03_000000_c" {
		t.Fatalf("History=%+v", info.History)
	}
	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)
	for i, h := range info.History {
		if !re.MatchString(h.AppliedAt) {
			t.Fatalf("History[%d].AppliedAt invalid: %q", i, h.AppliedAt)
		}
	}
}

func TestFromConfig_AfterMigrate(t *testing.T) {
	_, cfg := openTempStoreForStatus(t)
	if err := os.WriteFile(filepath.Join(cfg.Dir, "2024_05_01_120000_init.sql"), []byte("CREATE TABLE t (id INTEGER);"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	before, err := FromConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if before.Current != "none" || !reflect.DeepEqual(before.Pending, []string{"2024_05_01_120000_init"}) {
		t.Fatalf("unexpected initial status: %+v", before)
	}

	if _, err := sqlrun.NewMigrator(cfg).MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	after, err := FromConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if after.Current != "2024_05_01_120000_init" || len(after.Pending) != 0 {
		t.Fatalf("unexpected status after migrate: %+v", after)
	}
}
