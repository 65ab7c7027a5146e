package types

import (
	"fmt"
	"sort"
)

// Catalog is the metadata map of all entities, keyed by entity name.
// It is built once at startup and is read-only afterwards.
type Catalog struct {
	schema   string
	entities map[string]*Entity
	order    []string
}

// NewCatalog creates a catalog whose tables live in the given schema
func NewCatalog(schema string, entities ...*Entity) (*Catalog, error) {
	c := &Catalog{
		schema:   schema,
		entities: make(map[string]*Entity),
	}
	for _, e := range entities {
		if _, dup := c.entities[e.Name]; dup {
			return nil, fmt.Errorf("entity %q registered twice", e.Name)
		}
		e.Schema = schema
		c.entities[e.Name] = e
		c.order = append(c.order, e.Name)
	}

	// Every relationship must point at a registered entity
	for _, e := range c.entities {
		for _, f := range e.fields {
			if f.Relation == nil {
				continue
			}
			target, ok := c.entities[f.Relation.Target]
			if !ok {
				return nil, fmt.Errorf("%s.%s: unknown target entity %q", e.Name, f.Name, f.Relation.Target)
			}
			if _, ok := target.Column(f.Relation.RemoteColumn); !ok {
				return nil, fmt.Errorf("%s.%s: target %s has no column %q", e.Name, f.Name, target.Name, f.Relation.RemoteColumn)
			}
		}
	}

	return c, nil
}

// Schema returns the namespace tables are created in
func (c *Catalog) Schema() string {
	return c.schema
}

// Entity returns the entity with the given name
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.entities[name]
	return e, ok
}

// Entities returns all entities in registration order
func (c *Catalog) Entities() []*Entity {
	out := make([]*Entity, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entities[name])
	}
	return out
}

// Names returns the sorted entity names
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
