package types

import "fmt"

// FieldKind distinguishes stored columns from relationship fields
type FieldKind int

const (
	// Column fields are stored on the entity's table
	Column FieldKind = iota
	// Relationship fields point at another entity
	Relationship
)

// String returns the string representation of the FieldKind
func (k FieldKind) String() string {
	switch k {
	case Column:
		return "column"
	case Relationship:
		return "relationship"
	default:
		return "unknown"
	}
}

// System field names present on every entity
const (
	FieldID        = "id"
	FieldTenantID  = "tenant_id"
	FieldCreatedBy = "created_by"
	FieldUpdatedBy = "updated_by"
	FieldCreatedOn = "created_on"
	FieldUpdatedOn = "updated_on"
)

// Relation describes how a relationship field joins to its target entity.
// The join condition is target.RemoteColumn = source.LocalColumn.
type Relation struct {
	Target       string // Target entity name
	LocalColumn  string // Column on the source entity
	RemoteColumn string // Column on the target entity
	ForeignKey   bool   // LocalColumn is a stored FK column on the source table
}

// Field describes a single field of an entity
type Field struct {
	Name     string
	Kind     FieldKind
	Type     ScalarType
	Nullable bool

	// Enum restricts a Text column to a fixed set of values
	Enum []string

	// Relation is set for relationship fields
	Relation *Relation
}

// Stored reports whether the field occupies a column on the entity's table
func (f Field) Stored() bool {
	return f.Kind == Column || (f.Relation != nil && f.Relation.ForeignKey)
}

// IsValid checks if a value is allowed for an enum field
func (f Field) IsValid(value string) bool {
	if len(f.Enum) == 0 {
		return true
	}
	for _, v := range f.Enum {
		if v == value {
			return true
		}
	}
	return false
}

// Col declares a stored column
func Col(name string, typ ScalarType, nullable bool) Field {
	return Field{Name: name, Kind: Column, Type: typ, Nullable: nullable}
}

// EnumCol declares a Text column restricted to the given values
func EnumCol(name string, nullable bool, values ...string) Field {
	return Field{Name: name, Kind: Column, Type: Text, Nullable: nullable, Enum: values}
}

// BelongsTo declares a many-to-one relationship backed by a FK column of the same name
func BelongsTo(name, target string, nullable bool) Field {
	return Field{
		Name:     name,
		Kind:     Relationship,
		Type:     UUID,
		Nullable: nullable,
		Relation: &Relation{
			Target:       target,
			LocalColumn:  name,
			RemoteColumn: FieldID,
			ForeignKey:   true,
		},
	}
}

// HasMany declares a one-to-many relationship; remoteColumn is the FK on the target
func HasMany(name, target, remoteColumn string) Field {
	return Field{
		Name: name,
		Kind: Relationship,
		Relation: &Relation{
			Target:       target,
			LocalColumn:  FieldID,
			RemoteColumn: remoteColumn,
		},
	}
}

// Entity is the static metadata of one business record type
type Entity struct {
	Name   string // Entity name, also the default table name
	Table  string
	Schema string // Namespace the table lives in

	fields []Field
	index  map[string]int
}

// NewEntity creates an entity with the system fields followed by the given fields
func NewEntity(name string, fields ...Field) *Entity {
	e := &Entity{
		Name:  name,
		Table: name,
		index: make(map[string]int),
	}

	system := []Field{
		Col(FieldID, UUID, false),
		Col(FieldTenantID, UUID, true),
		Col(FieldCreatedBy, UUID, true),
		Col(FieldUpdatedBy, UUID, true),
		Col(FieldCreatedOn, DateTime, false),
		Col(FieldUpdatedOn, DateTime, false),
	}
	for _, f := range append(system, fields...) {
		if _, dup := e.index[f.Name]; dup {
			panic(fmt.Sprintf("entity %s: duplicate field %q", name, f.Name))
		}
		e.index[f.Name] = len(e.fields)
		e.fields = append(e.fields, f)
	}

	return e
}

// QualifiedTable returns the schema-qualified table name
func (e *Entity) QualifiedTable() string {
	if e.Schema == "" {
		return e.Table
	}
	return e.Schema + "." + e.Table
}

// Field returns a field by name, including relationship fields
func (e *Entity) Field(name string) (Field, bool) {
	i, ok := e.index[name]
	if !ok {
		return Field{}, false
	}
	return e.fields[i], true
}

// Column returns a stored column by name, including FK columns of BelongsTo relations
func (e *Entity) Column(name string) (Field, bool) {
	f, ok := e.Field(name)
	if !ok || !f.Stored() {
		return Field{}, false
	}
	return f, true
}

// Fields returns all fields in declaration order
func (e *Entity) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Columns returns the stored columns in declaration order
func (e *Entity) Columns() []Field {
	var out []Field
	for _, f := range e.fields {
		if f.Stored() {
			out = append(out, f)
		}
	}
	return out
}

// ColumnName returns the physical column of a stored field
func (f Field) ColumnName() string {
	if f.Relation != nil && f.Relation.ForeignKey {
		return f.Relation.LocalColumn
	}
	return f.Name
}
