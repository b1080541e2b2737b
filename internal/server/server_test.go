package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casegraph/casegraph/pkg/casefile"
	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/pipeline"
	"github.com/casegraph/casegraph/pkg/store"
)

// stubSource serves a fixed network for any case ID.
type stubSource struct {
	err error
}

func (s *stubSource) FetchNetwork(ctx context.Context, caseID string) (graph.Network, error) {
	if s.err != nil {
		return graph.Network{}, s.err
	}
	return graph.Network{
		CaseID: caseID,
		Entities: []graph.Entity{
			{ID: "victim", Type: graph.EntityPerson, Label: "Jane Roe", Risk: graph.RiskLow, Victim: true, ClusterID: "ring-2"},
			{ID: "mule", Type: graph.EntityMuleAccount, Label: "Acct 991", Risk: graph.RiskHigh, ClusterID: "ring-1"},
			{ID: "boss", Type: graph.EntityPerson, Label: "J. Doe", Risk: graph.RiskCritical, Suspect: true, ClusterID: "ring-1"},
		},
		Relationships: []graph.Relationship{
			{ID: "r1", SourceID: "victim", TargetID: "mule", Type: graph.RelTransfer, Amount: 5000, Currency: "USD"},
			{ID: "r2", SourceID: "boss", TargetID: "mule", Type: graph.RelCall},
		},
	}, nil
}

type stubCases struct {
	cases []casefile.Case
	err   error
}

func (s *stubCases) ListCases(ctx context.Context) ([]casefile.Case, error) {
	return s.cases, s.err
}

func newTestServer(t *testing.T, src *stubSource, cases CaseLister) *Server {
	t.Helper()
	return New(Config{
		Runner: pipeline.NewRunner(src, nil, nil, nil),
		Cases:  cases,
		Store:  store.NewMemoryStore(),
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}
}

func TestLayoutEndpoint(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/cases/7/layout")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp layoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CaseID != "7" {
		t.Errorf("case_id = %s", resp.CaseID)
	}
	if resp.Stats.Entities != 3 || resp.Stats.Relationships != 2 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if resp.Layout.Placements["mule"].Level != 1 {
		t.Errorf("level(mule) = %d, want 1", resp.Layout.Placements["mule"].Level)
	}
	if resp.NetworkHash == "" {
		t.Error("missing network hash")
	}
}

func TestLayoutEndpointFilters(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/cases/7/layout?cluster=ring-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp layoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Stats.Entities != 2 {
		t.Errorf("filtered entities = %d, want 2", resp.Stats.Entities)
	}
	if _, ok := resp.Layout.Placements["victim"]; ok {
		t.Error("filtered entity still placed")
	}
}

func TestLayoutEndpointBadFilter(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/cases/7/layout?risk=rainbow")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != string(errors.ErrCodeInvalidFilter) {
		t.Errorf("code = %s", resp.Error.Code)
	}
}

func TestNetworkEndpoint(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/cases/7/network")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp networkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Network.Entities) != 3 {
		t.Errorf("entities = %d", len(resp.Network.Entities))
	}
	if resp.Cached {
		t.Error("null cache should never report a hit")
	}
}

func TestCaseNotFound(t *testing.T) {
	src := &stubSource{err: errors.New(errors.ErrCodeCaseNotFound, "case 404 not found")}
	h := newTestServer(t, src, nil).Handler()

	rec := get(t, h, "/api/cases/404/layout")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExportDOT(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/cases/7/export.dot")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"boss" -> "mule"`) {
		t.Errorf("dot output missing edge:\n%s", rec.Body.String())
	}
}

func TestListCasesEndpoint(t *testing.T) {
	cases := &stubCases{cases: []casefile.Case{
		{ID: "1", Number: "CASE-001", Title: "Romance scam", Status: "open", Priority: "high"},
		{ID: "2", Number: "CASE-002", Title: "Pig butchering", Status: "open", Priority: "critical"},
	}}
	h := newTestServer(t, &stubSource{}, cases).Handler()

	rec := get(t, h, "/api/cases")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp caseListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.Cases[0].Number != "CASE-001" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListCasesUnconfigured(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/cases")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	// No snapshots yet.
	rec := get(t, h, "/api/cases/7/snapshots/latest")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("latest before create: status = %d, want 404", rec.Code)
	}

	// Create one.
	req := httptest.NewRequest(http.MethodPost, "/api/cases/7/snapshots", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var ref store.Ref
	if err := json.Unmarshal(rec.Body.Bytes(), &ref); err != nil {
		t.Fatalf("decode ref: %v", err)
	}
	if ref.CaseID != "7" || ref.ID == "" {
		t.Errorf("ref = %+v", ref)
	}

	// Latest now returns it.
	rec = get(t, h, "/api/cases/7/snapshots/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("latest: status = %d", rec.Code)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.ID != ref.ID || len(snap.Network.Entities) != 3 {
		t.Errorf("snapshot = id %s, entities %d", snap.ID, len(snap.Network.Entities))
	}

	// By ID and in the listing.
	rec = get(t, h, "/api/snapshots/"+ref.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by id: status = %d", rec.Code)
	}

	rec = get(t, h, "/api/cases/7/snapshots")
	var list snapshotListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || list.Snapshots[0].ID != ref.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/snapshots/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	h := newTestServer(t, &stubSource{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("request id = %s, want upstream-id", got)
	}
}
