package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zekoder/zegraphql/types"
)

// Output formats accepted by --format
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// systemColumns are listed first in tables, in this order
var systemColumns = []string{types.FieldID, types.FieldCreatedOn, types.FieldUpdatedOn}

// hiddenColumns are omitted from tables to keep them narrow
var hiddenColumns = map[string]bool{
	types.FieldTenantID:  true,
	types.FieldCreatedBy: true,
	types.FieldUpdatedBy: true,
}

func writeRecords(w io.Writer, format string, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		return writeYAML(w, records)
	case FormatTable, "":
		return writeTable(w, records)
	default:
		return NewValidationError("format output", "format", format, "Use table, json or yaml")
	}
}

func writeRecord(w io.Writer, format string, record types.Record) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case FormatYAML:
		return writeYAML(w, record)
	default:
		return writeRecords(w, format, []types.Record{record})
	}
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeTable(w io.Writer, records []types.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found")
		return err
	}

	columns := tableColumns(records)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(rec[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// tableColumns returns the system columns followed by the others sorted by name
func tableColumns(records []types.Record) []string {
	seen := map[string]bool{}
	var rest []string
	for _, rec := range records {
		for k := range rec {
			if seen[k] || hiddenColumns[k] {
				continue
			}
			seen[k] = true
			rest = append(rest, k)
		}
	}

	var columns []string
	for _, c := range systemColumns {
		if seen[c] {
			columns = append(columns, c)
		}
	}
	sort.Strings(rest)
	for _, c := range rest {
		isSystem := false
		for _, s := range systemColumns {
			if c == s {
				isSystem = true
				break
			}
		}
		if !isSystem {
			columns = append(columns, c)
		}
	}
	return columns
}

func cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case time.Time:
		return x.Format(time.RFC3339)
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprintf("%v", x)
	}
}
