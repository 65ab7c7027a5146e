package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScalarType defines the storage type of a column
type ScalarType int

const (
	// Text columns hold arbitrary strings
	Text ScalarType = iota
	// Integer columns hold 64-bit integers
	Integer
	// Float columns hold 64-bit floats
	Float
	// Boolean columns are stored as 0/1
	Boolean
	// Date columns hold a calendar date, stored and returned as YYYY-MM-DD
	Date
	// DateTime columns hold an instant, stored as fixed-width UTC text
	DateTime
	// UUID columns hold canonical lowercase UUID strings
	UUID
	// TextList columns hold a list of strings, stored as JSON text
	TextList
)

const (
	// DateLayout is the storage and wire format of Date columns
	DateLayout = "2006-01-02"

	// DateTimeLayout is the storage format of DateTime columns. The fixed width
	// keeps lexicographic and chronological order identical.
	DateTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// accepted input layouts for DateTime values given as strings
var dateTimeInputLayouts = []string{
	DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

// String returns the string representation of the ScalarType
func (t ScalarType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case UUID:
		return "uuid"
	case TextList:
		return "text_list"
	default:
		return "unknown"
	}
}

// SQLType returns the column affinity used when creating tables
func (t ScalarType) SQLType() string {
	switch t {
	case Integer, Boolean:
		return "INTEGER"
	case Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Parse converts a string operator value into a Go value of this type.
// TextList values are comma separated.
func (t ScalarType) Parse(s string) (interface{}, error) {
	switch t {
	case Text:
		return s, nil
	case Integer:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return n, nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", s)
		}
		return f, nil
	case Boolean:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return b, nil
	case Date:
		d, err := time.Parse(DateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
		}
		return d.Format(DateLayout), nil
	case DateTime:
		return parseDateTime(s)
	case UUID:
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q", s)
		}
		return id.String(), nil
	case TextList:
		if s == "" {
			return []string{}, nil
		}
		return strings.Split(s, ","), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

// ParseOperand converts a string used in a pattern or comparison to a driver value
func (t ScalarType) ParseOperand(s string) (interface{}, error) {
	v, err := t.Parse(s)
	if err != nil {
		return nil, err
	}
	return t.Encode(v)
}

// Encode converts a Go value to the value written to the database.
// nil is passed through so nullability is left to the storage engine.
func (t ScalarType) Encode(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case Text:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
	case Integer:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case float64:
			if x == float64(int64(x)) {
				return int64(x), nil
			}
		case json.Number:
			return x.Int64()
		case string:
			return t.Parse(x)
		}
	case Float:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case json.Number:
			return x.Float64()
		case string:
			return t.Parse(x)
		}
	case Boolean:
		b, ok := v.(bool)
		if s, isString := v.(string); isString {
			parsed, err := t.Parse(s)
			if err != nil {
				return nil, err
			}
			b, ok = parsed.(bool), true
		}
		if ok {
			if b {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case Date:
		switch x := v.(type) {
		case time.Time:
			return x.Format(DateLayout), nil
		case string:
			return t.Parse(x)
		}
	case DateTime:
		switch x := v.(type) {
		case time.Time:
			return x.UTC().Format(DateTimeLayout), nil
		case string:
			parsed, err := parseDateTime(x)
			if err != nil {
				return nil, err
			}
			return parsed.Format(DateTimeLayout), nil
		}
	case UUID:
		switch x := v.(type) {
		case uuid.UUID:
			return x.String(), nil
		case string:
			return t.Parse(x)
		}
	case TextList:
		var list []string
		switch x := v.(type) {
		case []string:
			list = x
		case []interface{}:
			list = make([]string, 0, len(x))
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("text list item %v is %T, not a string", item, item)
				}
				list = append(list, s)
			}
		case string:
			parsed, _ := t.Parse(x)
			list = parsed.([]string)
		default:
			return nil, fmt.Errorf("cannot encode %T as %s", v, t)
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}

	return nil, fmt.Errorf("cannot encode %T as %s", v, t)
}

// Decode converts a value read from the database into its Go representation
func (t ScalarType) Decode(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch t {
	case Text, UUID, Date:
		switch x := v.(type) {
		case string:
			return x, nil
		case time.Time:
			if t == Date {
				return x.Format(DateLayout), nil
			}
		}
	case Integer:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			return int64(x), nil
		}
	case Float:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		}
	case Boolean:
		if x, ok := v.(int64); ok {
			return x != 0, nil
		}
	case DateTime:
		switch x := v.(type) {
		case string:
			return parseDateTime(x)
		case time.Time:
			return x.UTC(), nil
		}
	case TextList:
		if x, ok := v.(string); ok {
			var list []string
			if err := json.Unmarshal([]byte(x), &list); err != nil {
				return nil, fmt.Errorf("corrupt text list %q: %w", x, err)
			}
			return list, nil
		}
	}

	return nil, fmt.Errorf("cannot decode %T as %s", v, t)
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeInputLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}
