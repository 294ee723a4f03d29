package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/fajrglobal/clinic-api/internal/repository"
	"github.com/fajrglobal/clinic-api/pkg/metrics"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository. m may be nil.
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, metrics: m}
}

// WithTx executes a function within a transaction. The transaction is
// rolled back on error or panic and committed otherwise.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return r.withTx(ctx, nil, fn)
}

// WithReadTx runs fn in a read-only transaction that sees a single snapshot.
func (r *BaseRepository) WithReadTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	var opts *sql.TxOptions
	if r.db.DriverName() == "postgres" {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return r.withTx(ctx, opts, fn)
}

func (r *BaseRepository) withTx(ctx context.Context, opts *sql.TxOptions, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return &repository.StoreError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return &repository.StoreError{Op: "commit transaction", Err: err}
	}
	return nil
}

// observe records metrics for op and classifies connection failures.
func (r *BaseRepository) observe(op string, start time.Time, err error) error {
	r.metrics.ObserveDB(op, start, err)
	if err != nil && isConnectionError(err) && !errors.Is(err, repository.ErrStoreUnavailable) {
		return &repository.StoreError{Op: op, Err: err}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08: connection exception, 57P0x: operator intervention.
		return strings.HasPrefix(string(pqErr.Code), "08") || strings.HasPrefix(string(pqErr.Code), "57P0")
	}
	return false
}

// likePattern matches q as a literal substring; '\' is the escape character.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// now is the timestamp written to created_at/updated_at columns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
