// Package business defines the documents, industries and summary_tasks
// entities, their access roles and hooks, and the request-level operations
// the API layer calls.
package business

import (
	"github.com/zekoder/zegraphql/internal/validation"
	"github.com/zekoder/zegraphql/types"
)

// Entity names
const (
	Documents    = "documents"
	Industries   = "industries"
	SummaryTasks = "summary_tasks"
)

// DocumentCategories are the allowed values of documents.category
var DocumentCategories = []string{
	"hr", "it", "marketing", "market_research", "finance", "sales", "startegy",
	"plan", "operations", "research_development", "product_management",
	"service_management", "customer_service", "risk_management", "audit",
	"investment",
}

// DocumentStatuses are the allowed values of documents.status
var DocumentStatuses = []string{"new", "in_progress", "completed", "failed", "update", "delete"}

// SummaryTaskStatuses are the allowed values of summary_tasks.status
var SummaryTaskStatuses = []string{"new", "in_progress", "completed", "failed"}

// DefaultStatus is assigned to new documents and summary tasks without a status
const DefaultStatus = "new"

// NewCatalog builds the entity metadata with every table in the given schema
func NewCatalog(schema string) (*types.Catalog, error) {
	documents := types.NewEntity(Documents,
		types.Col("name", types.Text, false),
		types.Col("report_source", types.Text, false),
		types.Col("release_date", types.Date, false),
		types.Col("expiry_date", types.Date, true),
		types.BelongsTo("industry_document", Industries, true),
		types.EnumCol("category", false, DocumentCategories...),
		types.Col("tags", types.Text, true),
		types.Col("original_pdf", types.UUID, true),
		types.EnumCol("status", true, DocumentStatuses...),
	)

	industries := types.NewEntity(Industries,
		types.HasMany("industry_document", Documents, "industry_document"),
		types.Col("industry_name", types.Text, true),
	)

	summaryTasks := types.NewEntity(SummaryTasks,
		types.EnumCol("status", false, SummaryTaskStatuses...),
		types.Col("questions", types.TextList, false),
		types.Col("min_max", types.Text, false),
		types.Col("word_count", types.Text, false),
		types.Col("source", types.Text, true),
		types.Col("industry", types.TextList, true),
		types.Col("category", types.TextList, false),
		types.Col("tags", types.TextList, true),
		types.Col("release_date", types.Date, true),
		types.Col("expiry_date", types.Date, true),
		types.Col("html", types.Text, true),
		types.Col("pdf", types.UUID, true),
		types.Col("name", types.Text, true),
	)

	catalog, err := types.NewCatalog(schema, industries, documents, summaryTasks)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}
