package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zekoder/zegraphql/types"
)

func TestParseWhere(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected []types.FilterPredicate
	}{
		{
			name:     "No filters",
			args:     nil,
			expected: nil,
		},
		{
			name: "Default operator is eq",
			args: []string{"status=new"},
			expected: []types.FilterPredicate{
				{FieldPath: "status", Operator: types.Operator{Eq: types.Str("new")}},
			},
		},
		{
			name: "Dotted path with operator",
			args: []string{"--industry_document.industry_name__prefix=Ene"},
			expected: []types.FilterPredicate{
				{FieldPath: "industry_document.industry_name", Operator: types.Operator{Prefix: types.Str("Ene")}},
			},
		},
		{
			name: "Directives on one path are merged",
			args: []string{"release_date__gte=2024-01-01", "name__ilike=oil", "release_date__lt=2025-01-01"},
			expected: []types.FilterPredicate{
				{FieldPath: "release_date", Operator: types.Operator{Gte: types.Str("2024-01-01"), Lt: types.Str("2025-01-01")}},
				{FieldPath: "name", Operator: types.Operator{ILike: types.Str("oil")}},
			},
		},
		{
			name: "Lists and null checks",
			args: []string{"status__in=new, failed", "category__nin=audit", "expiry_date__is_null=true"},
			expected: []types.FilterPredicate{
				{FieldPath: "status", Operator: types.Operator{In: []string{"new", "failed"}}},
				{FieldPath: "category", Operator: types.Operator{NotIn: []string{"audit"}}},
				{FieldPath: "expiry_date", Operator: types.Operator{IsNull: types.Bool(true)}},
			},
		},
		{
			name: "Value may contain equals signs",
			args: []string{"name=a=b"},
			expected: []types.FilterPredicate{
				{FieldPath: "name", Operator: types.Operator{Eq: types.Str("a=b")}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseWhere(tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("parseWhere() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseWhereErrors(t *testing.T) {
	for _, args := range [][]string{
		{"status"},
		{"=x"},
		{"status__like=x"},
		{"expiry_date__is_null=maybe"},
	} {
		_, err := parseWhere(args)
		var cliErr *CLIError
		if !errors.As(err, &cliErr) {
			t.Errorf("parseWhere(%q): expected a CLIError, got %v", args, err)
			continue
		}
		if len(cliErr.Suggestions) == 0 {
			t.Errorf("parseWhere(%q): expected suggestions", args)
		}
	}
}
