package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/store"
)

type stubRunStore struct {
	runs    []store.Run
	records []store.Record
	pingErr error
	gotDate string
}

func (s *stubRunStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	return s.runs, nil
}

func (s *stubRunStore) ListRecords(ctx context.Context, runDate string, limit int) ([]store.Record, error) {
	s.gotDate = runDate
	return s.records, nil
}

func (s *stubRunStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func doRequest(t *testing.T, srv *Server, target string) (*httptest.ResponseRecorder, jsendResponse) {
	t.Helper()

	e := srv.newEcho()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp jsendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestHandleHealthReportsDatabaseState(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubRunStore{}, zerolog.Nop(), Options{})
	rec, resp := doRequest(t, srv, "/api/v1/health")

	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
	data := resp.Data.(map[string]any)
	if data["service"] != "matwatch" || data["database"] != true {
		t.Fatalf("unexpected health payload: %v", data)
	}
}

func TestHandleRunsWithoutStore(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, zerolog.Nop(), Options{})
	rec, resp := doRequest(t, srv, "/api/v1/runs")

	if rec.Code != http.StatusServiceUnavailable || resp.Status != "fail" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
}

func TestHandleRecordsRequiresDate(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubRunStore{}, zerolog.Nop(), Options{})
	rec, resp := doRequest(t, srv, "/api/v1/records")

	if rec.Code != http.StatusBadRequest || resp.Status != "fail" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
}

func TestHandleRecordsReturnsStoredRows(t *testing.T) {
	t.Parallel()

	stub := &stubRunStore{records: []store.Record{{
		Material:  "LPG GAS",
		Title:     "Propane terminal reopens",
		URL:       "https://example.com/story",
		Published: time.Date(2023, 5, 4, 9, 30, 0, 0, time.UTC),
		Relevance: 88,
	}}}
	srv := NewServer(stub, zerolog.Nop(), Options{})
	rec, resp := doRequest(t, srv, "/api/v1/records?date=2023-05-04")

	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
	if stub.gotDate != "2023-05-04" {
		t.Fatalf("unexpected date passed to store: %q", stub.gotDate)
	}
	data := resp.Data.(map[string]any)
	items := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestHandleDigestRendersText(t *testing.T) {
	t.Parallel()

	stub := &stubRunStore{records: []store.Record{{
		Material:  "LPG GAS",
		Title:     "Propane terminal reopens",
		URL:       "https://example.com/story",
		Published: time.Date(2023, 5, 4, 9, 30, 0, 0, time.UTC),
		Relevance: 88,
	}}}
	srv := NewServer(stub, zerolog.Nop(), Options{})
	rec, resp := doRequest(t, srv, "/api/v1/digest?date=2023-05-04")

	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
	digest := resp.Data.(map[string]any)["digest"].(string)
	if !strings.Contains(digest, "Propane terminal reopens") {
		t.Fatalf("unexpected digest: %q", digest)
	}
}

func TestHandleRecordsRejectsBadDate(t *testing.T) {
	t.Parallel()

	srv := NewServer(&stubRunStore{}, zerolog.Nop(), Options{})
	rec, _ := doRequest(t, srv, "/api/v1/records?date=04-05-2023")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
