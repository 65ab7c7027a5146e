package validation_test

import (
	"strings"
	"testing"

	"github.com/zekoder/zegraphql/internal/validation"
	"github.com/zekoder/zegraphql/types"
)

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name    string
		entity  *types.Entity
		wantErr string
	}{
		{
			name: "valid entity",
			entity: types.NewEntity("reports",
				types.Col("title", types.Text, false),
				types.EnumCol("state", true, "open", "closed"),
				types.BelongsTo("owner", "owners", true),
			),
		},
		{
			name:    "uppercase entity name",
			entity:  types.NewEntity("Reports"),
			wantErr: "not a valid identifier",
		},
		{
			name:    "field with a quote",
			entity:  types.NewEntity("reports", types.Col("bad'name", types.Text, true)),
			wantErr: "not a valid identifier",
		},
		{
			name:    "field with a path separator",
			entity:  types.NewEntity("reports", types.Col("a__b", types.Text, true)),
			wantErr: `must not contain "__"`,
		},
		{
			name:    "reserved column",
			entity:  types.NewEntity("reports", types.Col("order", types.Text, true)),
			wantErr: "reserved column name",
		},
		{
			name:    "duplicate enum value",
			entity:  types.NewEntity("reports", types.EnumCol("state", true, "open", "open")),
			wantErr: "duplicate enum value",
		},
		{
			name:    "empty enum value",
			entity:  types.NewEntity("reports", types.EnumCol("state", true, "open", "")),
			wantErr: "cannot be empty",
		},
		{
			name:    "quoted enum value",
			entity:  types.NewEntity("reports", types.EnumCol("state", true, "it's")),
			wantErr: "contains quotes",
		},
		{
			name: "enum on a non text column",
			entity: types.NewEntity("reports", types.Field{
				Name: "level", Kind: types.Column, Type: types.Integer, Enum: []string{"1"},
			}),
			wantErr: "must be text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateEntity(tt.entity)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	owners := types.NewEntity("owners", types.Col("name", types.Text, false))
	c, err := types.NewCatalog("main", owners)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := validation.ValidateCatalog(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad, err := types.NewCatalog("Main-Schema", types.NewEntity("owners"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := validation.ValidateCatalog(bad); err == nil {
		t.Error("expected an invalid schema to be rejected")
	}

	empty, _ := types.NewCatalog("main")
	if err := validation.ValidateCatalog(empty); err == nil {
		t.Error("expected an empty catalog to be rejected")
	}
}

func TestIsIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"documents":     true,
		"summary_tasks": true,
		"v2":            true,
		"":              false,
		"_private":      false,
		"2fast":         false,
		"Name":          false,
		"a b":           false,
		"a;drop":        false,
	} {
		if got := validation.IsIdentifier(s); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}
