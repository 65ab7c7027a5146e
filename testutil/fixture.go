// Package testutil boots an in-memory database seeded with a known universe
// of industries, documents and summary tasks.
package testutil

import (
	"context"
	_ "embed"
	"encoding/json"
	"testing"
	"time"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/types"
	"github.com/zekoder/zegraphql/zegraphql/storage"
)

//go:embed testdata/universe.json
var universeJSON []byte

// FixtureUser is the actor every fixture record is created by
const FixtureUser = "f0000000-0000-4000-8000-000000000001"

// FixtureTime is the clock of the seeded service
var FixtureTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// Universe provides typed access to the seeded records
type Universe struct {
	// Industries
	Energy    types.Record
	Retail    types.Record
	Aerospace types.Record // Referenced by no document

	// Documents
	OilOutlook   types.Record // energy, completed
	GasPrices    types.Record // energy, new
	SolarSurvey  types.Record // energy, in_progress
	HolidaySales types.Record // retail, completed
	StoreAudit   types.Record // retail, failed, GLOB metacharacters in the name
	Orphan       types.Record // no industry, LIKE metacharacters in the name

	// Summary tasks
	EnergySummary types.Record
	RetailSummary types.Record

	// ByKey holds every record under its fixture key
	ByKey map[string]types.Record

	byEntity map[string][]types.Record
}

type fixtureRecord map[string]interface{}

type fixtureData struct {
	Industries   []fixtureRecord `json:"industries"`
	Documents    []fixtureRecord `json:"documents"`
	SummaryTasks []fixtureRecord `json:"summary_tasks"`
}

// Load returns a service over a fresh in-memory database holding the universe
func Load(t *testing.T, opts ...business.ServiceOption) (*business.Service, *Universe) {
	t.Helper()

	catalog, err := business.NewCatalog("main")
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	db, err := storage.Open(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := storage.NewBootstrapper(db, catalog).Bootstrap(ctx, storage.MemoryPath); err != nil {
		t.Fatalf("failed to bootstrap: %v", err)
	}

	opts = append([]business.ServiceOption{
		business.WithTimeFunc(func() time.Time { return FixtureTime }),
	}, opts...)
	svc := business.NewService(db, catalog, opts...)

	var fixture fixtureData
	if err := json.Unmarshal(universeJSON, &fixture); err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	u := &Universe{
		ByKey:    make(map[string]types.Record),
		byEntity: make(map[string][]types.Record),
	}
	meta := business.RequestMeta{Actor: types.Actor{UserID: FixtureUser}}

	// Industries first, documents point at them through fixture keys
	seed := func(entity string, rows []fixtureRecord) {
		for _, row := range rows {
			key, _ := row["key"].(string)
			input := make(map[string]interface{}, len(row))
			for k, v := range row {
				if k == "key" {
					continue
				}
				if k == "industry" && entity == business.Documents {
					input["industry_document"] = u.ByKey[v.(string)].ID()
					continue
				}
				input[k] = v
			}

			rec, err := svc.Create(ctx, entity, input, meta)
			if err != nil {
				t.Fatalf("failed to seed %s %q: %v", entity, key, err)
			}
			u.ByKey[key] = rec
			u.byEntity[entity] = append(u.byEntity[entity], rec)
		}
	}
	seed(business.Industries, fixture.Industries)
	seed(business.Documents, fixture.Documents)
	seed(business.SummaryTasks, fixture.SummaryTasks)

	u.Energy = u.ByKey["energy"]
	u.Retail = u.ByKey["retail"]
	u.Aerospace = u.ByKey["unused"]
	u.OilOutlook = u.ByKey["oil-outlook"]
	u.GasPrices = u.ByKey["gas-prices"]
	u.SolarSurvey = u.ByKey["solar-survey"]
	u.HolidaySales = u.ByKey["holiday-sales"]
	u.StoreAudit = u.ByKey["store-audit"]
	u.Orphan = u.ByKey["orphan"]
	u.EnergySummary = u.ByKey["energy-summary"]
	u.RetailSummary = u.ByKey["retail-summary"]

	return svc, u
}

// Records returns the seeded records of an entity in insertion order
func (u *Universe) Records(entity string) []types.Record {
	return u.byEntity[entity]
}

// DocumentsOf returns the seeded documents of an industry
func (u *Universe) DocumentsOf(industry types.Record) []types.Record {
	var out []types.Record
	for _, doc := range u.byEntity[business.Documents] {
		if doc.String("industry_document") == industry.ID() {
			out = append(out, doc)
		}
	}
	return out
}

// WithStatus returns the seeded records of an entity with the given status
func (u *Universe) WithStatus(entity, status string) []types.Record {
	var out []types.Record
	for _, rec := range u.byEntity[entity] {
		if rec.String("status") == status {
			out = append(out, rec)
		}
	}
	return out
}
