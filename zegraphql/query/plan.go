package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/zekoder/zegraphql/types"
)

// Plan is the accumulated filter, sort and pagination state of one request.
// Plans are values: Merge returns a new plan and never touches its input.
type Plan struct {
	Limit      int
	Offset     int
	Predicates []Predicate
	Equals     []Predicate
	Sort       *Sort
}

// NewPlan returns the default plan: first page of DefaultPageSize rows
func NewPlan() Plan {
	return Plan{Limit: types.DefaultPageSize}
}

// Update is a partial change to a plan. Nil or empty fields leave the plan as is.
type Update struct {
	Limit    *int
	PageSize *int
	Offset   *int
	Page     *int
	Filters  []types.FilterPredicate
	Equals   map[string]interface{}
	Sort     string
}

// FromQuerySchema converts an inbound list request into a plan update
func FromQuerySchema(q types.QuerySchema) Update {
	return Update{
		Page:     q.Page,
		PageSize: q.PageSize,
		Filters:  q.Filters,
		Sort:     q.Sort,
	}
}

// Merge applies an update to a plan.
// Limit comes from Limit, falling back to PageSize; a zero counts as not
// supplied. Offset comes from Offset, falling back to (Page-1) * the limit in
// effect after this merge.
func (b *Builder) Merge(plan Plan, u Update) (Plan, error) {
	next := plan.clone()

	switch {
	case u.Limit != nil && *u.Limit != 0:
		next.Limit = *u.Limit
	case u.PageSize != nil && *u.PageSize != 0:
		next.Limit = *u.PageSize
	}
	if next.Limit < 0 {
		return Plan{}, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidQuery, next.Limit)
	}

	switch {
	case u.Offset != nil:
		next.Offset = *u.Offset
	case u.Page != nil:
		if *u.Page < 1 {
			return Plan{}, fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidQuery, *u.Page)
		}
		next.Offset = (*u.Page - 1) * next.Limit
	}
	if next.Offset < 0 {
		return Plan{}, fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidQuery, next.Offset)
	}

	if len(u.Filters) > 0 {
		preds, err := b.Compile(u.Filters)
		if err != nil {
			return Plan{}, err
		}
		next.Predicates = preds
	}

	if len(u.Equals) > 0 {
		preds, err := b.CompileEquals(u.Equals)
		if err != nil {
			return Plan{}, err
		}
		next.Equals = preds
	}

	if u.Sort != "" {
		// An unknown sort field drops the directive but keeps any earlier one
		if s := b.CompileSort(u.Sort); s != nil {
			next.Sort = s
		}
	}

	return next, nil
}

func (p Plan) clone() Plan {
	out := p
	if p.Predicates != nil {
		out.Predicates = append([]Predicate(nil), p.Predicates...)
	}
	if p.Equals != nil {
		out.Equals = append([]Predicate(nil), p.Equals...)
	}
	if p.Sort != nil {
		s := *p.Sort
		out.Sort = &s
	}
	return out
}

// Joins returns the joins every predicate and the sort need, deduplicated by alias
func (p Plan) Joins() []Join {
	seen := make(map[string]bool)
	var out []Join
	add := func(joins []Join) {
		for _, j := range joins {
			if seen[j.Alias] {
				continue
			}
			seen[j.Alias] = true
			out = append(out, j)
		}
	}
	for _, pred := range p.Equals {
		add(pred.Column.Joins)
	}
	for _, pred := range p.Predicates {
		add(pred.Column.Joins)
	}
	if p.Sort != nil {
		add(p.Sort.Column.Joins)
	}
	return out
}

// Where returns all conditions of the plan, equality filters first
func (p Plan) Where() []sq.Sqlizer {
	out := make([]sq.Sqlizer, 0, len(p.Equals)+len(p.Predicates))
	for _, pred := range p.Equals {
		out = append(out, pred.Cond)
	}
	for _, pred := range p.Predicates {
		out = append(out, pred.Cond)
	}
	return out
}

// Statement returns the SELECT for a plan with squirrel's question placeholders
func (b *Builder) Statement(plan Plan, paginate bool) sq.SelectBuilder {
	alias := b.root.Name
	columns := b.root.Columns()
	selected := make([]string, 0, len(columns))
	for _, c := range columns {
		selected = append(selected, alias+"."+c.ColumnName())
	}

	stmt := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Select(selected...).
		From(b.root.QualifiedTable() + " AS " + alias)

	joins := plan.Joins()
	for _, j := range joins {
		stmt = stmt.LeftJoin(j.SQL())
	}

	for _, cond := range plan.Where() {
		stmt = stmt.Where(cond)
	}

	// Joins through has-many relations would repeat the root row
	if len(joins) > 0 {
		stmt = stmt.GroupBy(alias + "." + types.FieldID)
	}

	if plan.Sort != nil {
		stmt = stmt.OrderBy(plan.Sort.SQL())
	}
	stmt = stmt.OrderBy(alias + ".rowid ASC")

	if paginate {
		stmt = stmt.Limit(uint64(plan.Limit)).Offset(uint64(plan.Offset))
	}

	return stmt
}

// SelectSQL renders the SELECT for a plan
func (b *Builder) SelectSQL(plan Plan, paginate bool) (string, []interface{}, error) {
	query, args, err := b.Statement(plan, paginate).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build select for %s: %w", b.root.Name, err)
	}
	b.logger.Debug().Str("sql", query).Interface("args", args).Msg("compiled select")
	return query, args, nil
}
