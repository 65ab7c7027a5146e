package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zekoder/zegraphql/types"
)

const (
	defaultLockTimeout = 10 * time.Second
	defaultLockRetry   = 50 * time.Millisecond
)

// Bootstrapper creates the tables of a catalog that do not exist yet.
// Existing tables are never altered.
type Bootstrapper struct {
	db          *sql.DB
	catalog     *types.Catalog
	logger      zerolog.Logger
	locker      LockerFunc
	lockTimeout time.Duration
	lockRetry   time.Duration
}

// BootstrapOption configures a Bootstrapper
type BootstrapOption func(*Bootstrapper)

// WithLogger sets the bootstrap logger
func WithLogger(logger zerolog.Logger) BootstrapOption {
	return func(b *Bootstrapper) {
		b.logger = logger
	}
}

// WithLocker replaces the advisory file lock taken around bootstrap
func WithLocker(fn LockerFunc) BootstrapOption {
	return func(b *Bootstrapper) {
		b.locker = fn
	}
}

// WithLockTimeout bounds how long Bootstrap waits for the lock
func WithLockTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrapper) {
		b.lockTimeout = d
	}
}

// WithLockRetry sets how often a held lock is polled
func WithLockRetry(d time.Duration) BootstrapOption {
	return func(b *Bootstrapper) {
		b.lockRetry = d
	}
}

// NewBootstrapper creates a bootstrapper for the catalog's tables
func NewBootstrapper(db *sql.DB, catalog *types.Catalog, opts ...BootstrapOption) *Bootstrapper {
	b := &Bootstrapper{
		db:          db,
		catalog:     catalog,
		logger:      zerolog.Nop(),
		locker:      FlockLocker,
		lockTimeout: defaultLockTimeout,
		lockRetry:   defaultLockRetry,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bootstrap creates missing tables and indexes. For a file database the DDL
// runs under an exclusive lock on LockPath(path).
func (b *Bootstrapper) Bootstrap(ctx context.Context, path string) error {
	if !IsMemory(path) {
		release, err := newBootstrapLock(path, b.locker, b.lockTimeout, b.lockRetry).acquire(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(); err != nil {
				b.logger.Warn().Err(err).Str("lock", LockPath(path)).Msg("failed to release bootstrap lock")
			}
		}()
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bootstrap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entity := range b.catalog.Entities() {
		for _, stmt := range Statements(entity) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to bootstrap %s: %w", entity.Name, err)
			}
		}
		b.logger.Debug().Str("entity", entity.Name).Str("table", entity.QualifiedTable()).Msg("table ready")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bootstrap: %w", err)
	}

	b.logger.Info().Int("entities", len(b.catalog.Entities())).Msg("storage bootstrapped")
	return nil
}

// Statements returns the DDL for one entity: its table followed by an index per FK column
func Statements(entity *types.Entity) []string {
	statements := []string{createTable(entity)}

	for _, f := range entity.Columns() {
		if f.Relation == nil || !f.Relation.ForeignKey {
			continue
		}
		index := fmt.Sprintf("idx_%s_%s", entity.Table, f.ColumnName())
		if entity.Schema != "" {
			index = entity.Schema + "." + index
		}
		statements = append(statements, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			index, entity.Table, f.ColumnName()))
	}

	return statements
}

func createTable(entity *types.Entity) string {
	var defs []string
	for _, f := range entity.Columns() {
		defs = append(defs, columnDefinition(f))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		entity.QualifiedTable(), strings.Join(defs, ",\n    "))
}

func columnDefinition(f types.Field) string {
	col := f.ColumnName()
	parts := []string{col, f.Type.SQLType()}

	if col == types.FieldID {
		parts = append(parts, "NOT NULL PRIMARY KEY")
	} else if !f.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if len(f.Enum) > 0 {
		quoted := make([]string, len(f.Enum))
		for i, v := range f.Enum {
			quoted[i] = fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "''"))
		}
		parts = append(parts, fmt.Sprintf("CHECK (%s IN (%s))", col, strings.Join(quoted, ", ")))
	}

	// SQLite resolves REFERENCES within the table's own schema
	if f.Relation != nil && f.Relation.ForeignKey {
		parts = append(parts, fmt.Sprintf("REFERENCES %s(%s)", f.Relation.Target, f.Relation.RemoteColumn))
	}

	return strings.Join(parts, " ")
}
