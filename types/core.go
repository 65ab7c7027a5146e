// Package types holds the entity metadata, records and query inputs shared by
// the query builder, the manager and the business layer.
package types

import (
	"context"
	"fmt"
)

// Record is one entity instance keyed by column name.
// System fields (id, tenant_id, created_by, updated_by, created_on, updated_on)
// are always present on records read from storage.
type Record map[string]interface{}

// ID returns the record's primary key
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns a field rendered as a string, or "" when absent or nil
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Map returns the record as a plain map, copied
func (r Record) Map() map[string]interface{} {
	return map[string]interface{}(r.Clone())
}

// Actor identifies who is invoking an operation
type Actor struct {
	UserID   string
	TenantID string
	Token    string // Raw bearer token, forwarded to hooks
}

// IsZero reports whether no identity is known
func (a Actor) IsZero() bool {
	return a.UserID == "" && a.TenantID == ""
}

type actorKey struct{}

// WithActor returns a context carrying the actor
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor carried by ctx, if any
func ActorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}
