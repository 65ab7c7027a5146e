package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zekoder/zegraphql/types"
)

// ErrFieldNotFound is returned when a field path does not resolve to a column
var ErrFieldNotFound = errors.New("field not found")

// Catalog looks up entity metadata by name
type Catalog interface {
	Entity(name string) (*types.Entity, bool)
}

// Join is one LEFT JOIN needed to reach a column through a relationship
type Join struct {
	Table string // Schema-qualified table
	Alias string
	On    string
	Many  bool // Follows a has-many relationship, so one root row meets many joined rows
}

// SQL renders the join clause without the JOIN keyword
func (j Join) SQL() string {
	return fmt.Sprintf("%s AS %s ON %s", j.Table, j.Alias, j.On)
}

// ColumnRef is a resolved column, qualified by the alias of the table it lives on
type ColumnRef struct {
	Alias  string
	Column string
	Field  types.Field
	Joins  []Join // Joins required to bring Alias into scope, in order
}

// String returns the qualified column reference
func (c ColumnRef) String() string {
	return c.Alias + "." + c.Column
}

// FansOut reports whether reaching the column crosses a has-many relationship
func (c ColumnRef) FansOut() bool {
	for _, j := range c.Joins {
		if j.Many {
			return true
		}
	}
	return false
}

// Resolve walks a dotted field path from root to a concrete column.
// Every segment but the last must name a relationship; the last must name a
// stored column. Any other shape yields ErrFieldNotFound.
func Resolve(catalog Catalog, root *types.Entity, path string) (ColumnRef, error) {
	if path == "" {
		return ColumnRef{}, fmt.Errorf("%w: empty path", ErrFieldNotFound)
	}

	segments := strings.Split(path, ".")
	current := root
	alias := root.Name
	var joins []Join

	for i, segment := range segments {
		field, ok := current.Field(segment)
		if !ok {
			return ColumnRef{}, fmt.Errorf("%w: %q has no field %q", ErrFieldNotFound, current.Name, segment)
		}

		if i == len(segments)-1 {
			if field.Kind != types.Column {
				return ColumnRef{}, fmt.Errorf("%w: %s.%s is a relationship, not a column", ErrFieldNotFound, current.Name, segment)
			}
			return ColumnRef{
				Alias:  alias,
				Column: field.ColumnName(),
				Field:  field,
				Joins:  joins,
			}, nil
		}

		if field.Kind != types.Relationship || field.Relation == nil {
			return ColumnRef{}, fmt.Errorf("%w: %s.%s is not a relationship", ErrFieldNotFound, current.Name, segment)
		}

		target, ok := catalog.Entity(field.Relation.Target)
		if !ok {
			return ColumnRef{}, fmt.Errorf("%w: unknown entity %q", ErrFieldNotFound, field.Relation.Target)
		}

		nextAlias := "j_" + strings.Join(segments[:i+1], "__")
		joins = append(joins, Join{
			Table: target.QualifiedTable(),
			Alias: nextAlias,
			On: fmt.Sprintf("%s.%s = %s.%s",
				nextAlias, field.Relation.RemoteColumn,
				alias, field.Relation.LocalColumn),
			Many: !field.Relation.ForeignKey,
		})

		current = target
		alias = nextAlias
	}

	// unreachable: the loop returns on the last segment
	return ColumnRef{}, ErrFieldNotFound
}
