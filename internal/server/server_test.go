package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/internal/metrics"
	"github.com/zekoder/zegraphql/testutil"
)

const (
	testUser   = "e1000000-0000-4000-8000-000000000001"
	testTenant = "e2000000-0000-4000-8000-000000000002"
)

type harness struct {
	router   http.Handler
	universe *testutil.Universe
	registry *prometheus.Registry
}

func newHarness(t *testing.T, enforce bool) *harness {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc, universe := testutil.Load(t, business.WithObserver(m))
	srv := New(svc, Options{
		Mode:         "test",
		EnforceRoles: enforce,
		ZeAuthURL:    "http://zeauth.test",
		Logger:       zerolog.Nop(),
		Metrics:      m,
		Gatherer:     reg,
	})
	return &harness{router: srv.Router(), universe: universe, registry: reg}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, roles ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderUserID, testUser)
	req.Header.Set(HeaderTenantID, testTenant)
	req.Header.Set("Authorization", "Bearer token-123")
	if len(roles) > 0 {
		req.Header.Set(HeaderRoles, strings.Join(roles, ", "))
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok, "expected an errors array, got %s", w.Body.String())
	require.Len(t, errs, 1)
	ext := errs[0].(map[string]interface{})["extensions"].(map[string]interface{})
	return ext["code"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	h.do(t, http.MethodPost, "/api/documents/query", nil)

	w = h.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "zegraphql_manager_operations_total")
	assert.Contains(t, w.Body.String(), `route="/api/:entity/query"`)
}

func TestQuery(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(t, http.MethodPost, "/api/documents/query", map[string]interface{}{
		"page_size": 2,
		"filters": []map[string]interface{}{
			{"field_path": "industry_document.industry_name", "operator": map[string]interface{}{"eq": "Energy"}},
		},
		"sort": "name",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	items := body["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "Gas Prices Q1", items[0].(map[string]interface{})["name"])
	assert.Equal(t, "Oil Outlook 2024", items[1].(map[string]interface{})["name"])
	assert.EqualValues(t, 2, body["next_page"])
}

func TestQueryInvalidPagination(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(t, http.MethodPost, "/api/documents/query", map[string]interface{}{"page": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, CodeBadUserInput, errorCode(t, w))
}

func TestGet(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(t, http.MethodGet, "/api/industries/"+h.universe.Energy.ID(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Energy", decode(t, w)["industry_name"])

	w = h.do(t, http.MethodGet, "/api/industries/a0000000-0000-4000-8000-0000000000ff", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, w))

	w = h.do(t, http.MethodGet, "/api/widgets/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, w))
}

func TestCreateUpdateDelete(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(t, http.MethodPost, "/api/documents", map[string]interface{}{
		"name":              "Wind Capacity",
		"report_source":     "GWEC",
		"release_date":      "2024-05-05",
		"category":          "research_development",
		"industry_document": h.universe.Energy.ID(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, "new", created["status"])
	assert.Equal(t, testUser, created["created_by"])
	assert.Equal(t, testTenant, created["tenant_id"])

	w = h.do(t, http.MethodPatch, "/api/documents/"+id, map[string]interface{}{
		"status":      "completed",
		"expiry_date": nil,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = h.do(t, http.MethodDelete, "/api/documents/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())

	w = h.do(t, http.MethodDelete, "/api/documents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateErrors(t *testing.T) {
	h := newHarness(t, false)

	t.Run("hook validation", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/api/documents", map[string]interface{}{
			"name": "x", "report_source": "y", "release_date": "2024-01-01", "category": "astrology",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, CodeBadUserInput, errorCode(t, w))
	})

	t.Run("integrity", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/api/documents", map[string]interface{}{"name": "incomplete"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, CodeBadUserInput, errorCode(t, w))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeBadUserInput, errorCode(t, w))
	})
}

func TestDeleteVetoed(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(t, http.MethodDelete, "/api/industries/"+h.universe.Energy.ID(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":false}`, w.Body.String())
}

func TestUpsertAndDeleteMultiple(t *testing.T) {
	h := newHarness(t, false)
	u := h.universe

	w := h.do(t, http.MethodPost, "/api/summary_tasks/upsert", []map[string]interface{}{
		{"id": u.RetailSummary.ID(), "status": "in_progress"},
		{"status": "bogus", "questions": []string{"q"}, "min_max": "1-2", "word_count": "1", "category": []string{"x"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "in_progress", items[0].(map[string]interface{})["status"])
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.EqualValues(t, 1, errs[0].(map[string]interface{})["index"])
	assert.Equal(t, CodeBadUserInput, errs[0].(map[string]interface{})["code"])

	w = h.do(t, http.MethodPost, "/api/summary_tasks/delete", map[string]interface{}{
		"ids": []string{u.EnergySummary.ID(), u.RetailSummary.ID()},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"deleted":2}`, w.Body.String())

	w = h.do(t, http.MethodPost, "/api/summary_tasks/delete", map[string]interface{}{
		"ids": []string{u.EnergySummary.ID()},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/api/summary_tasks/delete", map[string]interface{}{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoleEnforcement(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(t, http.MethodPost, "/api/documents/query", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeForbidden, errorCode(t, w))

	w = h.do(t, http.MethodPost, "/api/documents/query", nil, "cybernetic-karari-industries-tenant-list")
	assert.Equal(t, http.StatusOK, w.Code, "a related list role grants listing")

	w = h.do(t, http.MethodDelete, "/api/summary_tasks/"+h.universe.EnergySummary.ID(), nil,
		"cybernetic-karari-summary_tasks-create")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPost, "/api/summary_tasks/upsert", []map[string]interface{}{}, "cybernetic-karari-summary_tasks-root-create")
	assert.Equal(t, http.StatusOK, w.Code, "create roles grant upserts")
}
