package query

import "strings"

// Sort is a compiled sort directive
type Sort struct {
	Column ColumnRef
	Desc   bool
}

// SQL renders the ORDER BY term. A column behind a has-many hop is
// aggregated per root row: MIN when ascending, MAX when descending.
func (s Sort) SQL() string {
	col := s.Column.String()
	if s.Desc {
		if s.Column.FansOut() {
			col = "MAX(" + col + ")"
		}
		return col + " DESC"
	}
	if s.Column.FansOut() {
		col = "MIN(" + col + ")"
	}
	return col + " ASC"
}

// CompileSort parses a directive such as "name" or "-industry_document.industry_name".
// An empty directive or an unknown field yields nil; the latter is logged.
func (b *Builder) CompileSort(directive string) *Sort {
	directive = strings.TrimSpace(directive)
	if directive == "" {
		return nil
	}

	desc := false
	path := directive
	if strings.HasPrefix(path, "-") {
		desc = true
		path = path[1:]
	}

	ref, err := Resolve(b.catalog, b.root, path)
	if err != nil {
		b.logger.Warn().
			Str("entity", b.root.Name).
			Str("sort", directive).
			Err(err).
			Msg("skipping sort on unknown field")
		b.skip(SkipSort)
		return nil
	}

	return &Sort{Column: ref, Desc: desc}
}
