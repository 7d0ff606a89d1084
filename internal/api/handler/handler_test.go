package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/logtrends/internal/analytics"
	"github.com/kiranshivaraju/logtrends/internal/store"
	"github.com/kiranshivaraju/logtrends/pkg/models"
)

// --- mock Analytics ---

type mockAnalytics struct {
	trending       func(hours float64) ([]models.TrendingLabel, error)
	groups         func(hours float64, page store.Page) (*analytics.GroupPage, error)
	labelHistogram func(hours float64) (*models.LabelHistogram, error)
	histogram      func(hours float64) (*models.Histogram, error)
	detail         func(hours float64, id int64) (*models.GroupDetail, error)
	logs           func(hours float64, id int64, page store.Page) (*analytics.LogPage, error)
	groupHistogram func(hours float64, id int64) (*models.Histogram, error)
}

func (m *mockAnalytics) TrendingLabels(_ context.Context, hours float64) ([]models.TrendingLabel, error) {
	return m.trending(hours)
}

func (m *mockAnalytics) ErrorGroups(_ context.Context, hours float64, page store.Page) (*analytics.GroupPage, error) {
	return m.groups(hours, page)
}

func (m *mockAnalytics) LabelHistogram(_ context.Context, hours float64) (*models.LabelHistogram, error) {
	return m.labelHistogram(hours)
}

func (m *mockAnalytics) Histogram(_ context.Context, hours float64) (*models.Histogram, error) {
	return m.histogram(hours)
}

func (m *mockAnalytics) GroupDetail(_ context.Context, hours float64, id int64) (*models.GroupDetail, error) {
	return m.detail(hours, id)
}

func (m *mockAnalytics) GroupLogs(_ context.Context, hours float64, id int64, page store.Page) (*analytics.LogPage, error) {
	return m.logs(hours, id, page)
}

func (m *mockAnalytics) GroupHistogram(_ context.Context, hours float64, id int64) (*models.Histogram, error) {
	return m.groupHistogram(hours, id)
}

// --- helpers ---

// serve routes through chi so URL params resolve.
func serve(pattern string, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get(pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func parseErr(t *testing.T, rec *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env.Error.Code
}

func parseOK(t *testing.T, rec *httptest.ResponseRecorder, data any) map[string]any {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data any            `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	env.Data = data
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Meta
}

// --- hours validation ---

func TestTrendingLabelsHandler_HoursValidation(t *testing.T) {
	svc := &mockAnalytics{trending: func(hours float64) ([]models.TrendingLabel, error) {
		if hours <= 0 {
			return nil, fmt.Errorf("%w: hours must be positive", analytics.ErrInvalidWindow)
		}
		return []models.TrendingLabel{}, nil
	}}
	h := NewTrendingLabelsHandler(svc)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing", "/api/v1/subcategories", http.StatusBadRequest},
		{"non-numeric", "/api/v1/subcategories?hours=abc", http.StatusBadRequest},
		{"zero", "/api/v1/subcategories?hours=0", http.StatusBadRequest},
		{"negative", "/api/v1/subcategories?hours=-3", http.StatusBadRequest},
		{"fractional", "/api/v1/subcategories?hours=1.5", http.StatusOK},
		{"integer", "/api/v1/subcategories?hours=24", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve("/api/v1/subcategories", h, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusBadRequest {
				if _, code := parseErr(t, rec); code != "INVALID_REQUEST" {
					t.Errorf("expected INVALID_REQUEST, got %s", code)
				}
			}
		})
	}
}

func TestTrendingLabelsHandler_Success(t *testing.T) {
	last := time.Date(2023, 10, 16, 12, 0, 0, 0, time.UTC)
	svc := &mockAnalytics{trending: func(hours float64) ([]models.TrendingLabel, error) {
		if hours != 24 {
			t.Errorf("expected hours=24, got %v", hours)
		}
		return []models.TrendingLabel{{
			Label: "TRANSPORT", Count: 5, Significance: 0.2, LastSeen: last, Log: "refused",
		}}, nil
	}}

	var data []map[string]any
	parseOK(t, serve("/api/v1/subcategories", NewTrendingLabelsHandler(svc), "/api/v1/subcategories?hours=24"), &data)

	if len(data) != 1 {
		t.Fatalf("expected 1 label, got %d", len(data))
	}
	if data[0]["label"] != "TRANSPORT" || data[0]["count"] != float64(5) {
		t.Errorf("unexpected label row: %v", data[0])
	}
	if data[0]["last"] != "2023-10-16T12:00:00Z" {
		t.Errorf("unexpected last: %v", data[0]["last"])
	}
}

func TestTrendingLabelsHandler_StoreFailure(t *testing.T) {
	svc := &mockAnalytics{trending: func(float64) ([]models.TrendingLabel, error) {
		return nil, errors.New("connection refused")
	}}

	rec := serve("/api/v1/subcategories", NewTrendingLabelsHandler(svc), "/api/v1/subcategories?hours=24")
	status, code := parseErr(t, rec)
	if status != http.StatusInternalServerError || code != "INTERNAL_ERROR" {
		t.Errorf("expected 500 INTERNAL_ERROR, got %d %s", status, code)
	}
}

// --- groups ---

func TestGroupsHandler_DefaultPage(t *testing.T) {
	var captured store.Page
	svc := &mockAnalytics{groups: func(_ float64, page store.Page) (*analytics.GroupPage, error) {
		captured = page
		return &analytics.GroupPage{Total: 45, Groups: []*models.GroupSummary{{ID: 1}}}, nil
	}}

	var data []map[string]any
	meta := parseOK(t, serve("/api/v1/groups", NewGroupsHandler(svc), "/api/v1/groups?hours=24"), &data)

	if captured != (store.Page{Number: 1, Limit: 20}) {
		t.Errorf("unexpected default page: %+v", captured)
	}
	if meta["total"] != float64(45) || meta["has_next"] != true {
		t.Errorf("unexpected meta: %v", meta)
	}
}

func TestGroupsHandler_ExplicitPage(t *testing.T) {
	var captured store.Page
	svc := &mockAnalytics{groups: func(_ float64, page store.Page) (*analytics.GroupPage, error) {
		captured = page
		return &analytics.GroupPage{Total: 45, Groups: []*models.GroupSummary{}}, nil
	}}

	var data []map[string]any
	meta := parseOK(t, serve("/api/v1/groups", NewGroupsHandler(svc), "/api/v1/groups?hours=24&page=3&limit=15"), &data)

	if captured != (store.Page{Number: 3, Limit: 15}) {
		t.Errorf("unexpected page: %+v", captured)
	}
	if meta["has_next"] != false {
		t.Errorf("page 3 of 15 over 45 is the last page: %v", meta)
	}
}

func TestGroupsHandler_InvalidPage(t *testing.T) {
	svc := &mockAnalytics{groups: func(_ float64, page store.Page) (*analytics.GroupPage, error) {
		if page.Number < 1 {
			return nil, fmt.Errorf("%w: page must be >= 1", analytics.ErrInvalidPage)
		}
		return &analytics.GroupPage{}, nil
	}}
	h := NewGroupsHandler(svc)

	for _, target := range []string{
		"/api/v1/groups?hours=24&page=abc",
		"/api/v1/groups?hours=24&limit=1.5",
		"/api/v1/groups?hours=24&page=0",
	} {
		rec := serve("/api/v1/groups", h, target)
		if status, code := parseErr(t, rec); status != http.StatusBadRequest || code != "INVALID_REQUEST" {
			t.Errorf("%s: expected 400 INVALID_REQUEST, got %d %s", target, status, code)
		}
	}
}

// --- group detail ---

func TestGroupDetailHandler_NotFound(t *testing.T) {
	svc := &mockAnalytics{detail: func(float64, int64) (*models.GroupDetail, error) {
		return nil, fmt.Errorf("loading group 9: %w", store.ErrNotFound)
	}}

	rec := serve("/api/v1/groups/{id}", NewGroupDetailHandler(svc), "/api/v1/groups/9?hours=24")
	status, code := parseErr(t, rec)
	if status != http.StatusNotFound || code != "GROUP_NOT_FOUND" {
		t.Errorf("expected 404 GROUP_NOT_FOUND, got %d %s", status, code)
	}
}

func TestGroupDetailHandler_InvalidID(t *testing.T) {
	svc := &mockAnalytics{detail: func(float64, int64) (*models.GroupDetail, error) {
		t.Fatal("service must not be called for an invalid id")
		return nil, nil
	}}

	rec := serve("/api/v1/groups/{id}", NewGroupDetailHandler(svc), "/api/v1/groups/abc?hours=24")
	if status, code := parseErr(t, rec); status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}

func TestGroupDetailHandler_Success(t *testing.T) {
	var gotID int64
	svc := &mockAnalytics{detail: func(_ float64, id int64) (*models.GroupDetail, error) {
		gotID = id
		return &models.GroupDetail{ID: id, Count: 3, Size: 10, First: "5 часов", Last: "1 час"}, nil
	}}

	var data map[string]any
	parseOK(t, serve("/api/v1/groups/{id}", NewGroupDetailHandler(svc), "/api/v1/groups/12?hours=24"), &data)

	if gotID != 12 {
		t.Errorf("expected id 12, got %d", gotID)
	}
	if data["first"] != "5 часов" || data["last"] != "1 час" {
		t.Errorf("unexpected durations: %v", data)
	}
	if data["count"] != float64(3) || data["size"] != float64(10) {
		t.Errorf("unexpected counts: %v", data)
	}
}

// --- group logs ---

func TestGroupLogsHandler(t *testing.T) {
	var gotID int64
	var gotPage store.Page
	svc := &mockAnalytics{logs: func(_ float64, id int64, page store.Page) (*analytics.LogPage, error) {
		gotID, gotPage = id, page
		return &analytics.LogPage{Total: 1, Records: []*models.LogRecord{{Label: "TRANSPORT"}}}, nil
	}}

	var data []map[string]any
	meta := parseOK(t, serve("/api/v1/groups/{id}/errors", NewGroupLogsHandler(svc), "/api/v1/groups/4/errors?hours=6&page=1&limit=5"), &data)

	if gotID != 4 || gotPage != (store.Page{Number: 1, Limit: 5}) {
		t.Errorf("unexpected args: id=%d page=%+v", gotID, gotPage)
	}
	if len(data) != 1 || data[0]["label"] != "TRANSPORT" {
		t.Errorf("unexpected records: %v", data)
	}
	if meta["total"] != float64(1) {
		t.Errorf("unexpected meta: %v", meta)
	}
}

// --- charts ---

func TestGroupHistogramHandler(t *testing.T) {
	x := []time.Time{
		time.Date(2023, 10, 16, 12, 0, 0, 0, time.UTC),
		time.Date(2023, 10, 16, 12, 30, 0, 0, time.UTC),
	}
	svc := &mockAnalytics{groupHistogram: func(float64, int64) (*models.Histogram, error) {
		return &models.Histogram{X: x, Y: []int64{0, 2}}, nil
	}}

	var data struct {
		X []time.Time `json:"x"`
		Y []int64     `json:"y"`
	}
	parseOK(t, serve("/api/v1/groups/{id}/chart", NewGroupHistogramHandler(svc), "/api/v1/groups/1/chart?hours=1"), &data)

	if len(data.X) != 2 || !data.X[1].Equal(x[1]) {
		t.Errorf("unexpected x: %v", data.X)
	}
	if len(data.Y) != 2 || data.Y[1] != 2 {
		t.Errorf("unexpected y: %v", data.Y)
	}
}

func TestLabelHistogramHandler(t *testing.T) {
	svc := &mockAnalytics{labelHistogram: func(float64) (*models.LabelHistogram, error) {
		return &models.LabelHistogram{
			X: []time.Time{time.Date(2023, 10, 16, 12, 0, 0, 0, time.UTC)},
			Y: map[string][]int64{"TRANSPORT": {3}, "DATA_QUERY": {0}},
		}, nil
	}}

	var data struct {
		Y map[string][]int64 `json:"y"`
	}
	parseOK(t, serve("/api/v1/groups/chart", NewLabelHistogramHandler(svc), "/api/v1/groups/chart?hours=1"), &data)

	if len(data.Y) != 2 || data.Y["TRANSPORT"][0] != 3 {
		t.Errorf("unexpected y: %v", data.Y)
	}
}

func TestHistogramHandler_InvalidWindow(t *testing.T) {
	svc := &mockAnalytics{histogram: func(float64) (*models.Histogram, error) {
		return nil, fmt.Errorf("%w: hours must not exceed 720", analytics.ErrInvalidWindow)
	}}

	rec := serve("/api/v1/chart", NewHistogramHandler(svc), "/api/v1/chart?hours=1000")
	if status, code := parseErr(t, rec); status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}
