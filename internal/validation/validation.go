// Package validation checks entity metadata before any SQL is generated from it.
// Table, column and enum names are interpolated into DDL and join clauses, so
// they are restricted to plain identifiers here.
package validation

import (
	"fmt"
	"strings"

	"github.com/zekoder/zegraphql/types"
)

// ValidateCatalog checks the schema and every registered entity
func ValidateCatalog(c *types.Catalog) error {
	if !IsIdentifier(c.Schema()) {
		return fmt.Errorf("schema %q is not a valid identifier", c.Schema())
	}
	if len(c.Entities()) == 0 {
		return fmt.Errorf("at least one entity must be registered")
	}
	for _, e := range c.Entities() {
		if err := ValidateEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEntity checks names, enums and relationships of one entity
func ValidateEntity(e *types.Entity) error {
	if !IsIdentifier(e.Name) {
		return fmt.Errorf("entity name %q is not a valid identifier", e.Name)
	}
	if !IsIdentifier(e.Table) {
		return fmt.Errorf("entity %s: table %q is not a valid identifier", e.Name, e.Table)
	}

	for _, f := range e.Fields() {
		if !IsIdentifier(f.Name) {
			return fmt.Errorf("entity %s: field name %q is not a valid identifier", e.Name, f.Name)
		}
		// "__" separates path segments in join aliases and CLI filters
		if strings.Contains(f.Name, "__") {
			return fmt.Errorf("entity %s: field name %q must not contain \"__\"", e.Name, f.Name)
		}
		if IsReservedColumnName(f.Name) {
			return fmt.Errorf("entity %s: '%s' is a reserved column name", e.Name, f.Name)
		}

		switch f.Kind {
		case types.Column:
			if err := validateEnum(e, f); err != nil {
				return err
			}
		case types.Relationship:
			if err := validateRelation(e, f); err != nil {
				return err
			}
		default:
			return fmt.Errorf("entity %s: invalid field kind %d for %s", e.Name, f.Kind, f.Name)
		}
	}
	return nil
}

func validateEnum(e *types.Entity, f types.Field) error {
	if len(f.Enum) == 0 {
		return nil
	}
	if f.Type != types.Text {
		return fmt.Errorf("entity %s: enum field %s must be text, got %s", e.Name, f.Name, f.Type)
	}

	seen := make(map[string]bool)
	for _, value := range f.Enum {
		if value == "" {
			return fmt.Errorf("entity %s: field %s: enum values cannot be empty", e.Name, f.Name)
		}
		if strings.ContainsAny(value, `'"\`) {
			return fmt.Errorf("entity %s: field %s: enum value %q contains quotes", e.Name, f.Name, value)
		}
		if seen[value] {
			return fmt.Errorf("entity %s: field %s: duplicate enum value '%s'", e.Name, f.Name, value)
		}
		seen[value] = true
	}
	return nil
}

func validateRelation(e *types.Entity, f types.Field) error {
	r := f.Relation
	if r == nil {
		return fmt.Errorf("entity %s: relationship %s has no relation", e.Name, f.Name)
	}
	if !IsIdentifier(r.LocalColumn) || !IsIdentifier(r.RemoteColumn) {
		return fmt.Errorf("entity %s: relationship %s joins on invalid columns %q/%q", e.Name, f.Name, r.LocalColumn, r.RemoteColumn)
	}
	if r.ForeignKey && r.LocalColumn != f.Name {
		return fmt.Errorf("entity %s: foreign key %s must be stored in a column of the same name", e.Name, f.Name)
	}
	return nil
}

// IsReservedColumnName reports SQL keywords that would need quoting as column names
func IsReservedColumnName(name string) bool {
	reserved := []string{
		"select", "from", "where", "order", "by", "group", "having", "limit", "offset",
		"insert", "update", "delete", "create", "drop", "alter", "table", "index",
		"join", "on", "and", "or", "not", "null", "in", "is", "like", "glob", "rowid",
	}

	name = strings.ToLower(name)
	for _, r := range reserved {
		if name == r {
			return true
		}
	}
	return false
}

// IsIdentifier reports whether s is a lowercase letter followed by lowercase
// letters, digits or underscores
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return false
		}
	}
	return true
}
