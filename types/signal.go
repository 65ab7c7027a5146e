package types

// Well-known keys of Signal.ContextURLs
const (
	URLZeAuth = "zeauth"
	URLSelf   = "self"
)

// Signal is the payload handed to mutation hooks.
// Pre hooks may return extra fields to persist; the payload itself is passed
// through unchanged.
type Signal struct {
	Actor       Actor
	NewData     map[string]interface{}
	OldData     map[string]interface{}
	ContextURLs map[string]string
}

// WithNewData returns a copy of the signal with NewData replaced
func (s Signal) WithNewData(data map[string]interface{}) Signal {
	s.NewData = data
	return s
}

// WithOldData returns a copy of the signal with OldData replaced
func (s Signal) WithOldData(data map[string]interface{}) Signal {
	s.OldData = data
	return s
}
