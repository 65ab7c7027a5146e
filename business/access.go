package business

import (
	"fmt"
	"sort"
)

// DefaultRolePrefix prefixes every role string
const DefaultRolePrefix = "cybernetic-karari"

// Action is one of the four protected operations
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Access is the static role configuration of one entity.
// Holding any listed role grants the action; checking is left to the caller.
type Access struct {
	Entity  string
	Prefix  string
	Related []string // Entities whose list roles also grant access to this one
}

// roles returns <prefix>-<entity>-<action> plus the tenant and root variants
func (a Access) roles(entity string, action Action) []string {
	return []string{
		fmt.Sprintf("%s-%s-%s", a.Prefix, entity, action),
		fmt.Sprintf("%s-%s-tenant-%s", a.Prefix, entity, action),
		fmt.Sprintf("%s-%s-root-%s", a.Prefix, entity, action),
	}
}

// RelatedRoles are the list roles of the entity itself and its related entities
func (a Access) RelatedRoles() []string {
	out := a.roles(a.Entity, ActionList)
	for _, rel := range a.Related {
		out = append(out, a.roles(rel, ActionList)...)
	}
	return out
}

// ListRoles grant reading; duplicates are removed
func (a Access) ListRoles() []string {
	return dedupe(append(a.roles(a.Entity, ActionList), a.RelatedRoles()...))
}

// CreateRoles grant creating
func (a Access) CreateRoles() []string {
	return append(a.roles(a.Entity, ActionCreate), a.RelatedRoles()...)
}

// UpdateRoles grant updating
func (a Access) UpdateRoles() []string {
	return append(a.roles(a.Entity, ActionUpdate), a.RelatedRoles()...)
}

// DeleteRoles grant deleting
func (a Access) DeleteRoles() []string {
	return append(a.roles(a.Entity, ActionDelete), a.RelatedRoles()...)
}

// UpsertRoles grant bulk upserts, which may both create and update
func (a Access) UpsertRoles() []string {
	return append(a.UpdateRoles(), a.CreateRoles()...)
}

// Roles returns the roles granting an action
func (a Access) Roles(action Action) []string {
	switch action {
	case ActionList:
		return a.ListRoles()
	case ActionCreate:
		return a.CreateRoles()
	case ActionUpdate:
		return a.UpdateRoles()
	case ActionDelete:
		return a.DeleteRoles()
	default:
		return nil
	}
}

// Allows reports whether any of the held roles grants the action
func (a Access) Allows(action Action, held []string) bool {
	return Intersects(a.Roles(action), held)
}

// Intersects reports whether the two role sets share a role
func Intersects(required, held []string) bool {
	set := make(map[string]bool, len(held))
	for _, r := range held {
		set[r] = true
	}
	for _, r := range required {
		if set[r] {
			return true
		}
	}
	return false
}

// AccessPolicies returns the access configuration of every entity
func AccessPolicies(prefix string) map[string]Access {
	if prefix == "" {
		prefix = DefaultRolePrefix
	}
	return map[string]Access{
		Documents:    {Entity: Documents, Prefix: prefix, Related: []string{Industries}},
		Industries:   {Entity: Industries, Prefix: prefix, Related: []string{Documents}},
		SummaryTasks: {Entity: SummaryTasks, Prefix: prefix},
	}
}

// dedupe removes duplicates and sorts, so the result is stable
func dedupe(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
