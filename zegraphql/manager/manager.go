// Package manager executes query plans against storage and runs mutations
// through the pre-hook, persist, post-hook pipeline.
package manager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zekoder/zegraphql/types"
	"github.com/zekoder/zegraphql/zegraphql/query"
)

// Manager is the CRUD engine for one entity.
// A Manager carries a base plan that List merges onto; it is not shared
// between requests, so callers create one per unit of work.
type Manager struct {
	db       *sql.DB
	catalog  query.Catalog
	entity   *types.Entity
	builder  *query.Builder
	plan     query.Plan
	hooks    Hooks
	logger   zerolog.Logger
	observer Observer
	timeFunc func() time.Time
	idFunc   func() string
}

// New creates a manager for the given entity
func New(db *sql.DB, catalog query.Catalog, entity *types.Entity, opts ...Option) *Manager {
	m := &Manager{
		db:       db,
		catalog:  catalog,
		entity:   entity,
		plan:     query.NewPlan(),
		hooks:    NopHooks{},
		logger:   zerolog.Nop(),
		observer: nopObserver{},
		timeFunc: time.Now,
		idFunc:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With().Str("entity", entity.Name).Logger()
	m.builder = query.NewBuilder(catalog, entity,
		query.WithLogger(m.logger),
		query.WithSkipHook(func(kind string) {
			m.observer.ObserveSkip(entity.Name, kind)
		}),
	)
	return m
}

// Entity returns the entity the manager works on
func (m *Manager) Entity() *types.Entity {
	return m.entity
}

// Plan returns the manager's accumulated base plan
func (m *Manager) Plan() query.Plan {
	return m.plan
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager(%s)", m.entity.Name)
}

// Filter returns a copy of the manager whose base plan has the update merged in
func (m *Manager) Filter(u query.Update) (*Manager, error) {
	plan, err := m.builder.Merge(m.plan, u)
	if err != nil {
		return nil, err
	}
	next := *m
	next.plan = plan
	return &next, nil
}

// ListOptions selects rows for List
type ListOptions struct {
	query.Update

	// Unpaginated scans every matching row, ignoring limit and offset
	Unpaginated bool
}

// Get returns the first record matching every equality filter
func (m *Manager) Get(ctx context.Context, equals map[string]interface{}) (record types.Record, err error) {
	defer m.track("get", time.Now(), &err)

	plan, err := m.builder.Merge(query.NewPlan(), query.Update{
		Equals: equals,
		Limit:  intPtr(1),
		Offset: intPtr(0),
	})
	if err != nil {
		return nil, err
	}

	records, err := m.fetch(ctx, plan, true)
	if err != nil {
		return nil, m.classify("get", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// GetByID returns the record with the given primary key
func (m *Manager) GetByID(ctx context.Context, id string) (types.Record, error) {
	return m.Get(ctx, map[string]interface{}{types.FieldID: id})
}

// List merges opts onto the base plan and returns the matching rows, in
// insertion order refined by the plan's sort
func (m *Manager) List(ctx context.Context, opts ListOptions) (records []types.Record, err error) {
	defer m.track("list", time.Now(), &err)

	plan, err := m.builder.Merge(m.plan, opts.Update)
	if err != nil {
		return nil, err
	}

	records, err = m.fetch(ctx, plan, !opts.Unpaginated)
	if err != nil {
		return nil, m.classify("list", err)
	}
	return records, nil
}

func (m *Manager) fetch(ctx context.Context, plan query.Plan, paginate bool) ([]types.Record, error) {
	stmt, args, err := m.builder.SelectSQL(plan, paginate)
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.entity.Name, err)
	}
	defer func() { _ = rows.Close() }()

	columns := m.entity.Columns()
	var records []types.Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", m.entity.Name, err)
		}

		record := make(types.Record, len(columns))
		for i, col := range columns {
			v, err := col.Type.Decode(values[i])
			if err != nil {
				return nil, fmt.Errorf("failed to decode %s.%s: %w", m.entity.Name, col.Name, err)
			}
			record[col.ColumnName()] = v
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", m.entity.Name, err)
	}

	m.logger.Debug().Int("rows", len(records)).Msg("fetched")
	return records, nil
}

// withTx runs fn inside a transaction, committing when it returns nil
func (m *Manager) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (m *Manager) track(op string, start time.Time, errp *error) {
	m.observer.ObserveOperation(m.entity.Name, op, status(*errp), time.Since(start))
}

func intPtr(n int) *int {
	return &n
}
