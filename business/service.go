package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zekoder/zegraphql/types"
	"github.com/zekoder/zegraphql/zegraphql/manager"
	"github.com/zekoder/zegraphql/zegraphql/query"
)

// ErrUnknownEntity is returned for an entity name outside the catalog
var ErrUnknownEntity = errors.New("unknown entity")

// RequestMeta carries who is calling and the URLs hooks may call back
type RequestMeta struct {
	Actor     types.Actor
	ZeAuthURL string
	SelfURL   string
}

// Signal builds the hook payload for one mutation
func (m RequestMeta) Signal(newData, oldData map[string]interface{}) *types.Signal {
	if newData == nil {
		newData = map[string]interface{}{}
	}
	if oldData == nil {
		oldData = map[string]interface{}{}
	}
	return &types.Signal{
		Actor:   m.Actor,
		NewData: newData,
		OldData: oldData,
		ContextURLs: map[string]string{
			types.URLZeAuth: m.ZeAuthURL,
			types.URLSelf:   m.SelfURL,
		},
	}
}

// Page is one page of a list result. NextPage is set when the page came back full.
type Page struct {
	Items    []types.Record `json:"items"`
	NextPage *int           `json:"next_page,omitempty"`
}

// ItemError is the failure of one item of a batch
type ItemError struct {
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// BatchResult reports a bulk upsert; partial success is a normal outcome
type BatchResult struct {
	Succeeded []types.Record `json:"items"`
	Failed    []ItemError    `json:"errors"`
}

// Service runs the request-level operations on top of a fresh Manager per call
type Service struct {
	db       *sql.DB
	catalog  *types.Catalog
	hooks    map[string]manager.Hooks
	logger   zerolog.Logger
	observer manager.Observer
	timeFunc func() time.Time
	pageSize int
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the service logger, passed down to every manager
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithObserver sets the metrics observer passed down to every manager
func WithObserver(o manager.Observer) ServiceOption {
	return func(s *Service) {
		s.observer = o
	}
}

// WithTimeFunc sets a custom time function for testing
func WithTimeFunc(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		s.timeFunc = fn
	}
}

// WithDefaultPageSize sets the page size used when a list request has none
func WithDefaultPageSize(n int) ServiceOption {
	return func(s *Service) {
		s.pageSize = n
	}
}

// WithHooks replaces the hooks of one entity
func WithHooks(entity string, h manager.Hooks) ServiceOption {
	return func(s *Service) {
		s.hooks[entity] = h
	}
}

// NewService creates a service over the catalog with the entity hooks registered
func NewService(db *sql.DB, catalog *types.Catalog, opts ...ServiceOption) *Service {
	s := &Service{
		db:       db,
		catalog:  catalog,
		logger:   zerolog.Nop(),
		pageSize: types.DefaultPageSize,
	}
	s.hooks = map[string]manager.Hooks{
		Documents:    DocumentHooks{},
		SummaryTasks: SummaryTaskHooks{},
		Industries: IndustryHooks{Documents: func() *manager.Manager {
			m, _ := s.Manager(Documents)
			return m
		}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the service's entity metadata
func (s *Service) Catalog() *types.Catalog {
	return s.catalog
}

// Manager returns a new manager for the named entity
func (s *Service) Manager(entity string) (*manager.Manager, error) {
	e, ok := s.catalog.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}

	opts := []manager.Option{
		manager.WithLogger(s.logger),
	}
	if h, ok := s.hooks[entity]; ok {
		opts = append(opts, manager.WithHooks(h))
	}
	if s.observer != nil {
		opts = append(opts, manager.WithObserver(s.observer))
	}
	if s.timeFunc != nil {
		opts = append(opts, manager.WithTimeFunc(s.timeFunc))
	}
	return manager.New(s.db, s.catalog, e, opts...), nil
}

// Get returns one record by id
func (s *Service) Get(ctx context.Context, entity, id string) (types.Record, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return nil, err
	}
	return m.GetByID(ctx, id)
}

// List returns one page of records
func (s *Service) List(ctx context.Context, entity string, q types.QuerySchema) (*Page, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return nil, err
	}

	page := q.PageOrDefault()
	size := q.PageSizeOrDefault(s.pageSize)

	u := query.FromQuerySchema(q)
	u.Page = &page
	u.PageSize = &size

	items, err := m.List(ctx, manager.ListOptions{Update: u})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []types.Record{}
	}

	result := &Page{Items: items}
	if size > 0 && len(items) == size {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

// Create inserts a record through the entity hooks
func (s *Service) Create(ctx context.Context, entity string, input map[string]interface{}, meta RequestMeta) (types.Record, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return nil, err
	}
	return m.Create(ctx, input, meta.Signal(input, nil))
}

// Update changes the non-null fields of input on an existing record
func (s *Service) Update(ctx context.Context, entity, id string, input map[string]interface{}, meta RequestMeta) (types.Record, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return nil, err
	}
	old, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data := withoutNulls(input)
	return m.Update(ctx, id, data, meta.Signal(data, old.Map()))
}

// Delete removes an existing record. It returns false when a hook cancels the deletion.
func (s *Service) Delete(ctx context.Context, entity, id string, meta RequestMeta) (bool, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return false, err
	}
	old, err := m.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return m.Delete(ctx, id, meta.Signal(nil, old.Map()))
}

// UpsertMultiple updates inputs whose id exists and creates the rest.
// Failures the caller can fix are collected per index; any other failure
// stops the batch and is returned with the items processed so far.
func (s *Service) UpsertMultiple(ctx context.Context, entity string, inputs []map[string]interface{}, meta RequestMeta) (*BatchResult, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Succeeded: []types.Record{},
		Failed:    []ItemError{},
	}
	for i, input := range inputs {
		rec, err := s.upsertOne(ctx, m, withoutNulls(input), meta)
		if err != nil {
			if errors.Is(err, manager.ErrNotFound) || manager.IsClientError(err) {
				result.Failed = append(result.Failed, ItemError{Index: i, Err: err})
				continue
			}
			return result, err
		}
		result.Succeeded = append(result.Succeeded, rec)
	}

	s.logger.Info().
		Str("entity", entity).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("upsert batch finished")
	return result, nil
}

func (s *Service) upsertOne(ctx context.Context, m *manager.Manager, data map[string]interface{}, meta RequestMeta) (types.Record, error) {
	id, _ := data[types.FieldID].(string)
	if id != "" {
		old, err := m.GetByID(ctx, id)
		switch {
		case err == nil:
			return m.Update(ctx, id, data, meta.Signal(data, old.Map()))
		case !errors.Is(err, manager.ErrNotFound):
			return nil, err
		}
	}
	return m.Create(ctx, data, meta.Signal(data, nil))
}

// DeleteMultiple removes every listed record in one statement. It fails with
// ErrNotFound when none of the ids exist.
func (s *Service) DeleteMultiple(ctx context.Context, entity string, ids []string, meta RequestMeta) (int64, error) {
	m, err := s.Manager(entity)
	if err != nil {
		return 0, err
	}

	old, err := m.List(ctx, manager.ListOptions{
		Update: query.Update{Filters: []types.FilterPredicate{{
			FieldPath: types.FieldID,
			Operator:  types.Operator{In: ids},
		}}},
		Unpaginated: true,
	})
	if err != nil {
		return 0, err
	}
	if len(old) == 0 {
		return 0, fmt.Errorf("%w: none of %d ids exist in %s", manager.ErrNotFound, len(ids), entity)
	}

	return m.DeleteMultiple(ctx, ids, old, meta.Signal(nil, nil))
}

func withoutNulls(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if v != nil {
			out[k] = v
		}
	}
	return out
}
