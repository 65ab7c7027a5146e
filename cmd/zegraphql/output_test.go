package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/zekoder/zegraphql/types"
)

func sampleRecords() []types.Record {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []types.Record{
		{
			"id": "a1", "created_on": created, "updated_on": created, "tenant_id": "t",
			"name": "Oil", "tags": []string{"x", "y"}, "expiry_date": nil,
		},
		{
			"id": "a2", "created_on": created, "updated_on": created, "tenant_id": "t",
			"name": "Gas", "tags": []string{}, "expiry_date": "2025-01-01",
		},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, FormatTable, sampleRecords()); err != nil {
		t.Fatalf("writeRecords: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	header := strings.Fields(lines[0])
	want := []string{"ID", "CREATED_ON", "UPDATED_ON", "EXPIRY_DATE", "NAME", "TAGS"}
	if diff := cmp.Diff(want, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(lines[1], "x,y") || !strings.Contains(lines[1], " - ") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if strings.Contains(buf.String(), "TENANT_ID") {
		t.Error("tenant_id should be hidden from tables")
	}
}

func TestWriteEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, FormatTable, nil); err != nil {
		t.Fatalf("writeRecords: %v", err)
	}
	if buf.String() != "No records found\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, FormatYAML, sampleRecords()); err != nil {
		t.Fatalf("writeRecords: %v", err)
	}

	var decoded []map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid yaml: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[1]["name"] != "Gas" {
		t.Errorf("unexpected yaml content: %v", decoded)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, FormatJSON, nil); err != nil {
		t.Fatalf("writeRecords: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected an empty json array, got %q", buf.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := writeRecords(&bytes.Buffer{}, "csv", nil); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
