package types

// Operator is a bag of optional comparison directives for one field.
// Several directives may be set at once; each becomes its own predicate.
type Operator struct {
	Eq       *string  `json:"eq,omitempty" yaml:"eq,omitempty"`
	Ne       *string  `json:"ne,omitempty" yaml:"ne,omitempty"`
	Gt       *string  `json:"gt,omitempty" yaml:"gt,omitempty"`
	Gte      *string  `json:"gte,omitempty" yaml:"gte,omitempty"`
	Lt       *string  `json:"lt,omitempty" yaml:"lt,omitempty"`
	Lte      *string  `json:"lte,omitempty" yaml:"lte,omitempty"`
	Prefix   *string  `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Contains *string  `json:"contains,omitempty" yaml:"contains,omitempty"`
	Postfix  *string  `json:"postfix,omitempty" yaml:"postfix,omitempty"`
	ILike    *string  `json:"ilike,omitempty" yaml:"ilike,omitempty"`
	In       []string `json:"in_,omitempty" yaml:"in_,omitempty"`
	NotIn    []string `json:"nin,omitempty" yaml:"nin,omitempty"`
	IsNull   *bool    `json:"is_null,omitempty" yaml:"is_null,omitempty"`
}

// IsEmpty reports whether no directive is set
func (o Operator) IsEmpty() bool {
	return o.Eq == nil && o.Ne == nil && o.Gt == nil && o.Gte == nil &&
		o.Lt == nil && o.Lte == nil && o.Prefix == nil && o.Contains == nil &&
		o.Postfix == nil && o.ILike == nil && o.In == nil && o.NotIn == nil &&
		o.IsNull == nil
}

// FilterPredicate applies an Operator to a dotted field path
type FilterPredicate struct {
	FieldPath string   `json:"field_path" yaml:"field_path"`
	Operator  Operator `json:"operator" yaml:"operator"`
}

// DefaultPageSize is the page size used when a request omits one
const DefaultPageSize = 20

// QuerySchema is the inbound list request of the resolver layer
type QuerySchema struct {
	Page     *int              `json:"page,omitempty"`
	PageSize *int              `json:"page_size,omitempty"`
	Filters  []FilterPredicate `json:"filters,omitempty"`
	Sort     string            `json:"sort,omitempty"`
}

// PageOrDefault returns the requested page, defaulting to 1
func (q QuerySchema) PageOrDefault() int {
	if q.Page == nil {
		return 1
	}
	return *q.Page
}

// PageSizeOrDefault returns the requested page size, defaulting to fallback
// when it is absent or zero
func (q QuerySchema) PageSizeOrDefault(fallback int) int {
	if q.PageSize == nil || *q.PageSize == 0 {
		return fallback
	}
	return *q.PageSize
}

// Str returns a pointer to s, for building operators inline
func Str(s string) *string {
	return &s
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n
func Int(n int) *int {
	return &n
}
