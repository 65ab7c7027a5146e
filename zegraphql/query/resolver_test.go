package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zekoder/zegraphql/types"
)

// testCatalog builds a small catalog shaped like the business one:
// documents belong to an industry, industries have many documents,
// and industries belong to a sector so paths can hop twice.
func testCatalog(t *testing.T) *types.Catalog {
	t.Helper()

	sectors := types.NewEntity("sectors",
		types.Col("label", types.Text, false),
	)
	industries := types.NewEntity("industries",
		types.HasMany("industry_document", "documents", "industry_document"),
		types.Col("industry_name", types.Text, true),
		types.BelongsTo("sector", "sectors", true),
	)
	documents := types.NewEntity("documents",
		types.Col("name", types.Text, false),
		types.Col("release_date", types.Date, false),
		types.Col("pages", types.Integer, true),
		types.Col("tags", types.TextList, true),
		types.BelongsTo("industry_document", "industries", true),
		types.EnumCol("status", true, "new", "in_progress", "completed"),
	)

	catalog, err := types.NewCatalog("main", sectors, industries, documents)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return catalog
}

func mustEntity(t *testing.T, catalog *types.Catalog, name string) *types.Entity {
	t.Helper()
	e, ok := catalog.Entity(name)
	if !ok {
		t.Fatalf("entity %s not registered", name)
	}
	return e
}

func TestResolve(t *testing.T) {
	catalog := testCatalog(t)
	documents := mustEntity(t, catalog, "documents")

	t.Run("root column", func(t *testing.T) {
		ref, err := Resolve(catalog, documents, "name")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.String() != "documents.name" {
			t.Errorf("expected documents.name, got %s", ref.String())
		}
		if len(ref.Joins) != 0 {
			t.Errorf("expected no joins, got %v", ref.Joins)
		}
	})

	t.Run("one hop reaches the related column", func(t *testing.T) {
		ref, err := Resolve(catalog, documents, "industry_document.industry_name")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.String() != "j_industry_document.industry_name" {
			t.Errorf("unexpected column %s", ref.String())
		}
		want := []Join{{
			Table: "main.industries",
			Alias: "j_industry_document",
			On:    "j_industry_document.id = documents.industry_document",
		}}
		if diff := cmp.Diff(want, ref.Joins); diff != "" {
			t.Errorf("joins mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("two hops chain joins", func(t *testing.T) {
		ref, err := Resolve(catalog, documents, "industry_document.sector.label")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.String() != "j_industry_document__sector.label" {
			t.Errorf("unexpected column %s", ref.String())
		}
		if len(ref.Joins) != 2 {
			t.Fatalf("expected 2 joins, got %d", len(ref.Joins))
		}
		if ref.Joins[1].On != "j_industry_document__sector.id = j_industry_document.sector" {
			t.Errorf("unexpected second join condition %q", ref.Joins[1].On)
		}
	})

	t.Run("has-many hop joins on the remote column", func(t *testing.T) {
		industries := mustEntity(t, catalog, "industries")
		ref, err := Resolve(catalog, industries, "industry_document.name")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.Joins[0].On != "j_industry_document.industry_document = industries.id" {
			t.Errorf("unexpected join condition %q", ref.Joins[0].On)
		}
		if !ref.Joins[0].Many || !ref.FansOut() {
			t.Error("expected the has-many hop to fan out")
		}
	})

	t.Run("belongs-to hops do not fan out", func(t *testing.T) {
		ref, err := Resolve(catalog, documents, "industry_document.sector.label")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.FansOut() {
			t.Errorf("unexpected fan out through %v", ref.Joins)
		}
	})

	failures := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"unknown field", "nonexistent"},
		{"unknown related field", "industry_document.nonexistent"},
		{"terminal relationship", "industry_document"},
		{"non-terminal column", "name.length"},
		{"trailing dot", "industry_document."},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(catalog, documents, tt.path)
			if !errors.Is(err, ErrFieldNotFound) {
				t.Errorf("expected ErrFieldNotFound for %q, got %v", tt.path, err)
			}
		})
	}
}
