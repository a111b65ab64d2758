package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"strikewatch/internal/store"
)

type stubStore struct {
	records []store.IncidentRecord
	filter  store.ListFilter
	stats   *store.DatasetStats
	pingErr error
}

func (s *stubStore) List(_ context.Context, filter store.ListFilter) ([]store.IncidentRecord, int64, error) {
	s.filter = filter
	return s.records, int64(len(s.records)), nil
}

func (s *stubStore) Stats(context.Context) (*store.DatasetStats, error) {
	if s.stats == nil {
		return nil, errors.New("no stats")
	}
	return s.stats, nil
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func newTestServer(db IncidentStore) *Server {
	return NewServer(db, zerolog.Nop(), Options{})
}

func doRequest(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.buildEcho().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&stubStore{}), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body jsendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status != "success" {
		t.Fatalf("expected success, got %+v", body)
	}
}

func TestHandleHealth_DatabaseDown(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&stubStore{pingErr: errors.New("down")}), "/healthz")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleIncidents_Filters(t *testing.T) {
	t.Parallel()

	db := &stubStore{records: []store.IncidentRecord{{Date: "2026-02-03", TargetType: "oil_refinery"}}}
	rec := doRequest(t, newTestServer(db), "/api/incidents?from=2026-02-01&to=2026-02-28&region=Crimea&maritime=true&page=2&per_page=50")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if db.filter.From != "2026-02-01" || db.filter.To != "2026-02-28" || db.filter.Region != "Crimea" {
		t.Fatalf("filter not passed through: %+v", db.filter)
	}
	if db.filter.Maritime == nil || !*db.filter.Maritime {
		t.Fatalf("maritime filter lost: %+v", db.filter)
	}
	if db.filter.Page != 2 || db.filter.PerPage != 50 {
		t.Fatalf("pagination lost: %+v", db.filter)
	}
}

func TestHandleIncidents_BadDate(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&stubStore{}), "/api/incidents?from=03.02.2026")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIncidents_PerPageCapped(t *testing.T) {
	t.Parallel()

	db := &stubStore{}
	rec := doRequest(t, newTestServer(db), "/api/incidents?per_page=9999")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if db.filter.PerPage != maxPageSize {
		t.Fatalf("expected per_page capped at %d, got %d", maxPageSize, db.filter.PerPage)
	}
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	db := &stubStore{stats: &store.DatasetStats{
		Total:        3,
		ByTargetType: []store.CountStat{{Key: "oil_refinery", Count: 2}, {Key: "naval", Count: 1}},
	}}
	rec := doRequest(t, newTestServer(db), "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Status string             `json:"status"`
		Data   store.DatasetStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Data.Total != 3 || len(body.Data.ByTargetType) != 2 {
		t.Fatalf("unexpected stats payload: %+v", body.Data)
	}
}

func TestHandleStats_Error(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&stubStore{}), "/api/stats")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
