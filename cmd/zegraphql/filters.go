package main

import (
	"strconv"
	"strings"

	"github.com/zekoder/zegraphql/types"
)

// parseWhere turns field.path__op=value arguments into filter predicates.
// A missing operator means eq. Directives on the same path share one predicate,
// kept in the order the paths first appear.
func parseWhere(args []string) ([]types.FilterPredicate, error) {
	var out []types.FilterPredicate
	index := map[string]int{}

	for _, arg := range args {
		parts := strings.SplitN(strings.TrimPrefix(arg, "--"), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, NewValidationError("parse filters", "filter", arg,
				"Use field=value or field__op=value, e.g. status__in=new,failed")
		}
		key, value := parts[0], parts[1]

		path, op := key, "eq"
		if i := strings.LastIndex(key, "__"); i > 0 {
			path, op = key[:i], key[i+2:]
		}

		pos, ok := index[path]
		if !ok {
			pos = len(out)
			index[path] = pos
			out = append(out, types.FilterPredicate{FieldPath: path})
		}
		if err := setDirective(&out[pos].Operator, op, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func setDirective(o *types.Operator, op, value string) error {
	v := value
	switch op {
	case "eq":
		o.Eq = &v
	case "ne":
		o.Ne = &v
	case "gt":
		o.Gt = &v
	case "gte":
		o.Gte = &v
	case "lt":
		o.Lt = &v
	case "lte":
		o.Lte = &v
	case "prefix":
		o.Prefix = &v
	case "contains":
		o.Contains = &v
	case "postfix":
		o.Postfix = &v
	case "ilike":
		o.ILike = &v
	case "in", "in_":
		o.In = splitList(value)
	case "nin":
		o.NotIn = splitList(value)
	case "is_null":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewValidationError("parse filters", "is_null value", value, "Use true or false")
		}
		o.IsNull = &b
	default:
		return NewValidationError("parse filters", "operator", op,
			"Supported operators: eq, ne, gt, gte, lt, lte, prefix, contains, postfix, ilike, in, nin, is_null")
	}
	return nil
}

func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
