package testutil

import (
	"testing"

	"github.com/zekoder/zegraphql/types"
)

// AssertRecordCount checks that the slice contains the expected number of records
func AssertRecordCount(t *testing.T, records []types.Record, expected int, context ...string) {
	t.Helper()
	if len(records) != expected {
		ctx := ""
		if len(context) > 0 {
			ctx = " " + context[0]
		}
		t.Errorf("expected %d records%s, got %d", expected, ctx, len(records))
	}
}

// AssertRecordExists verifies that a record with the given id is in the slice
func AssertRecordExists(t *testing.T, records []types.Record, id string) {
	t.Helper()
	for _, rec := range records {
		if rec.ID() == id {
			return
		}
	}
	t.Errorf("record %s not found in results", id)
}

// AssertRecordNotExists verifies that no record with the given id is in the slice
func AssertRecordNotExists(t *testing.T, records []types.Record, id string) {
	t.Helper()
	for _, rec := range records {
		if rec.ID() == id {
			t.Errorf("record %s should not be in results", id)
			return
		}
	}
}

// AssertIDs verifies the exact ids of the slice, in order
func AssertIDs(t *testing.T, records []types.Record, ids ...string) {
	t.Helper()
	if len(records) != len(ids) {
		t.Errorf("expected %d records, got %d", len(ids), len(records))
		return
	}
	for i, rec := range records {
		if rec.ID() != ids[i] {
			t.Errorf("record %d: expected %s, got %s", i, ids[i], rec.ID())
		}
	}
}

// AssertAllHaveField verifies every record holds the given string value in field
func AssertAllHaveField(t *testing.T, records []types.Record, field, value string) {
	t.Helper()
	for _, rec := range records {
		if got := rec.String(field); got != value {
			t.Errorf("record %s: expected %s=%q, got %q", rec.ID(), field, value, got)
		}
	}
}
