package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/zekoder/zegraphql/types"
)

// ErrInvalidQuery marks a request the caller can correct: bad operand values,
// unknown equality columns, negative pagination bounds.
var ErrInvalidQuery = errors.New("invalid query")

// Op names a single comparison directive
type Op string

// Directives in the order they are compiled
const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpPrefix   Op = "prefix"
	OpContains Op = "contains"
	OpPostfix  Op = "postfix"
	OpILike    Op = "ilike"
	OpIn       Op = "in"
	OpNotIn    Op = "nin"
	OpIsNull   Op = "is_null"
)

// Predicate is one compiled boolean condition
type Predicate struct {
	Column ColumnRef
	Op     Op
	Cond   sq.Sqlizer
}

// Skip kinds reported to the skip hook
const (
	SkipFilter = "filter"
	SkipSort   = "sort"
)

// Builder compiles filter, sort and pagination requests for one root entity
type Builder struct {
	catalog Catalog
	root    *types.Entity
	logger  zerolog.Logger
	onSkip  func(kind string)
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithLogger sets the logger used for skip warnings and debug output
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithSkipHook registers a callback invoked whenever a filter or sort is dropped
func WithSkipHook(fn func(kind string)) BuilderOption {
	return func(b *Builder) {
		b.onSkip = fn
	}
}

// NewBuilder creates a builder rooted at the given entity
func NewBuilder(catalog Catalog, root *types.Entity, opts ...BuilderOption) *Builder {
	b := &Builder{
		catalog: catalog,
		root:    root,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Root returns the entity the builder is rooted at
func (b *Builder) Root() *types.Entity {
	return b.root
}

func (b *Builder) skip(kind string) {
	if b.onSkip != nil {
		b.onSkip(kind)
	}
}

// Compile turns filter predicates into conditions. Predicates whose path does
// not resolve are dropped with a warning; the rest are ANDed by the caller.
func (b *Builder) Compile(filters []types.FilterPredicate) ([]Predicate, error) {
	var out []Predicate
	b.logger.Debug().Int("filters", len(filters)).Msg("building filter list")

	for _, filter := range filters {
		ref, err := Resolve(b.catalog, b.root, filter.FieldPath)
		if err != nil {
			b.logger.Warn().
				Str("entity", b.root.Name).
				Str("field_path", filter.FieldPath).
				Err(err).
				Msg("skipping filter on unknown field")
			b.skip(SkipFilter)
			continue
		}

		preds, err := compileOperator(ref, filter.Operator)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, filter.FieldPath, err)
		}
		out = append(out, preds...)
	}

	b.logger.Debug().Int("conditions", len(out)).Msg("filters built")
	return out, nil
}

// CompileEquals turns plain column=value pairs on the root entity into
// conditions, in column name order.
func (b *Builder) CompileEquals(equals map[string]interface{}) ([]Predicate, error) {
	keys := make([]string, 0, len(equals))
	for k := range equals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Predicate, 0, len(keys))
	for _, key := range keys {
		field, ok := b.root.Column(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidQuery, b.root.Name, key)
		}
		value, err := field.Type.Encode(equals[key])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, key, err)
		}
		ref := ColumnRef{Alias: b.root.Name, Column: field.ColumnName(), Field: field}
		out = append(out, Predicate{Column: ref, Op: OpEq, Cond: sq.Eq{ref.String(): value}})
	}
	return out, nil
}

func compileOperator(ref ColumnRef, op types.Operator) ([]Predicate, error) {
	col := ref.String()
	typ := ref.Field.Type
	var out []Predicate

	add := func(o Op, cond sq.Sqlizer) {
		out = append(out, Predicate{Column: ref, Op: o, Cond: cond})
	}

	comparisons := []struct {
		op    Op
		value *string
		build func(v interface{}) sq.Sqlizer
	}{
		{OpEq, op.Eq, func(v interface{}) sq.Sqlizer { return sq.Eq{col: v} }},
		{OpNe, op.Ne, func(v interface{}) sq.Sqlizer { return sq.NotEq{col: v} }},
		{OpGt, op.Gt, func(v interface{}) sq.Sqlizer { return sq.Gt{col: v} }},
		{OpGte, op.Gte, func(v interface{}) sq.Sqlizer { return sq.GtOrEq{col: v} }},
		{OpLt, op.Lt, func(v interface{}) sq.Sqlizer { return sq.Lt{col: v} }},
		{OpLte, op.Lte, func(v interface{}) sq.Sqlizer { return sq.LtOrEq{col: v} }},
	}
	for _, c := range comparisons {
		if c.value == nil {
			continue
		}
		v, err := typ.ParseOperand(*c.value)
		if err != nil {
			return nil, err
		}
		add(c.op, c.build(v))
	}

	// Pattern directives match on the stored text, so operands are not parsed
	if op.Prefix != nil {
		add(OpPrefix, sq.Expr(col+" GLOB ?", escapeGlob(*op.Prefix)+"*"))
	}
	if op.Contains != nil {
		add(OpContains, sq.Expr(col+" GLOB ?", "*"+escapeGlob(*op.Contains)+"*"))
	}
	if op.Postfix != nil {
		add(OpPostfix, sq.Expr(col+" GLOB ?", "*"+escapeGlob(*op.Postfix)))
	}
	if op.ILike != nil {
		pattern := "%" + escapeLike(Fold(*op.ILike)) + "%"
		add(OpILike, sq.Expr(FoldFunction+"("+col+") LIKE ? ESCAPE '\\'", pattern))
	}

	if op.In != nil {
		values, err := parseList(typ, op.In)
		if err != nil {
			return nil, err
		}
		add(OpIn, sq.Eq{col: values})
	}
	if op.NotIn != nil {
		values, err := parseList(typ, op.NotIn)
		if err != nil {
			return nil, err
		}
		add(OpNotIn, sq.NotEq{col: values})
	}

	if op.IsNull != nil {
		if *op.IsNull {
			add(OpIsNull, sq.Eq{col: nil})
		} else {
			add(OpIsNull, sq.NotEq{col: nil})
		}
	}

	return out, nil
}

func parseList(typ types.ScalarType, raw []string) ([]interface{}, error) {
	values := make([]interface{}, 0, len(raw))
	for _, s := range raw {
		v, err := typ.ParseOperand(s)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// escapeGlob makes GLOB metacharacters match literally
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteByte(']')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// escapeLike escapes LIKE wildcards for use with ESCAPE '\'
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
