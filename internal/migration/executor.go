package migration

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/loykin/sqlrun/internal/common"
	"github.com/loykin/sqlrun/internal/store"
)

// State is the progress of a single run.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateApplying
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateApplying:
		return "applying"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the single database connection a run uses. *sql.Conn satisfies it.
type Session interface {
	store.Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Result reports how far a run got. It is meaningful on failure too.
type Result struct {
	State     State
	Applied   []string
	Failed    string
	Remaining []string
}

// Executor applies pending migrations one by one and stops at the first failure.
type Executor struct {
	Session  Session
	Registry Registry
	Source   Source
	// Transactional wraps script and registry row in one transaction. When
	// off, statements that ran before a failure stay in place on SQLite.
	// PostgreSQL runs an argument-less multi-statement script as a single
	// implicit transaction, so a failing file leaves nothing behind there
	// either way.
	Transactional bool
	Logger        *common.Logger
}

// Run applies pending strictly in the given order. Migrations committed
// before a failure stay committed.
func (e *Executor) Run(ctx context.Context, pending []string) (Result, error) {
	logger := e.logger()
	res := Result{State: StateApplying}

	if len(pending) == 0 {
		logger.Info("no pending migrations")
		res.State = StateDone
		return res, nil
	}

	logger.Info("applying migrations", "count", len(pending), "transactional", e.Transactional)
	for i, name := range pending {
		if err := e.apply(ctx, name); err != nil {
			res.State = StateFailed
			res.Failed = name
			res.Remaining = append([]string(nil), pending[i+1:]...)
			logger.Error("migration run halted",
				"error", err,
				"migration", name,
				"applied", len(res.Applied),
				"not_attempted", len(res.Remaining))
			return res, err
		}
		res.Applied = append(res.Applied, name)
	}

	res.State = StateDone
	logger.Info("migrations complete", "applied", len(res.Applied))
	return res, nil
}

func (e *Executor) apply(ctx context.Context, name string) error {
	logger := e.logger().WithMigration(name)
	start := time.Now()

	script, err := e.Source.Read(name)
	if err != nil {
		return err
	}

	if e.Transactional {
		err = e.applyInTx(ctx, name, script, logger)
	} else {
		err = e.applyDirect(ctx, name, script)
	}
	if err != nil {
		return newError(ErrMigrationExecution, name, "", err)
	}

	logger.Info("migration applied", "duration", time.Since(start))
	return nil
}

func (e *Executor) applyDirect(ctx context.Context, name, script string) error {
	if _, err := e.Session.ExecContext(ctx, script); err != nil {
		return err
	}
	return e.Registry.RecordApplied(ctx, e.Session, name)
}

func (e *Executor) applyInTx(ctx context.Context, name, script string, logger *common.Logger) (err error) {
	tx, err := e.Session.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if err = e.Registry.RecordApplied(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

func (e *Executor) logger() *common.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return common.GetLogger().WithComponent("executor")
}
