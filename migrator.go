package sqlrun

import (
	"context"

	"github.com/loykin/sqlrun/internal/common"
	"github.com/loykin/sqlrun/internal/migration"
)

// Migrator runs migrations from Config.Dir against the configured database.
type Migrator struct {
	Config Config
}

// NewMigrator returns a Migrator for cfg.
func NewMigrator(cfg Config) *Migrator {
	return &Migrator{Config: cfg}
}

func (m *Migrator) source() migration.DirSource {
	return migration.DirSource{Dir: m.Config.dir()}
}

// Candidates lists the migration identifiers found in the directory, unordered.
func (m *Migrator) Candidates() ([]string, error) {
	return m.source().List()
}

// MigrateUp applies every pending migration in identifier order and stops at
// the first failure. The directory is read before any database work, and the
// connection is closed on every path.
func (m *Migrator) MigrateUp(ctx context.Context) (Result, error) {
	logger := common.GetLogger().WithComponent("migrator")
	res := Result{State: StateIdle}

	src := m.source()
	candidates, err := src.List()
	if err != nil {
		res.State = StateFailed
		return res, err
	}
	logger.Debug("migration files found", "dir", src.Dir, "count", len(candidates))

	st, err := OpenStore(ctx, m.Config)
	if err != nil {
		res.State = StateFailed
		return res, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close database", "error", cerr)
		}
	}()

	res.State = StateResolving
	pending, err := migration.Pending(ctx, st, candidates)
	if err != nil {
		res.State = StateFailed
		return res, err
	}

	exec := &migration.Executor{
		Session:       st.Session(),
		Registry:      st,
		Source:        src,
		Transactional: m.Config.Transactional,
		Logger:        logger,
	}
	return exec.Run(ctx, pending)
}

// Pending returns the migrations MigrateUp would apply, in order.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	candidates, err := m.Candidates()
	if err != nil {
		return nil, err
	}
	st, err := OpenStore(ctx, m.Config)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()
	return migration.Pending(ctx, st, candidates)
}

// Status returns the applied records, oldest first, and the pending identifiers.
func (m *Migrator) Status(ctx context.Context) ([]Record, []string, error) {
	candidates, err := m.Candidates()
	if err != nil {
		return nil, nil, err
	}
	st, err := OpenStore(ctx, m.Config)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = st.Close() }()
	return StatusFromStore(ctx, st, candidates)
}

// StatusFromStore reads applied records from st and resolves candidates against them.
func StatusFromStore(ctx context.Context, st *Store, candidates []string) ([]Record, []string, error) {
	pending, err := migration.Pending(ctx, st, candidates)
	if err != nil {
		return nil, nil, err
	}
	records, err := st.ListRecords(ctx)
	if err != nil {
		return nil, nil, migration.SchemaError(err)
	}
	return records, pending, nil
}

// CreateMigration writes a new empty migration file into Config.Dir.
func (m *Migrator) CreateMigration(name string) (string, error) {
	return CreateMigration(CreateOptions{Name: name, Dir: m.Config.dir()})
}
