package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/graph/layout"
	"github.com/casegraph/casegraph/pkg/pipeline"
	"github.com/casegraph/casegraph/pkg/store"
)

// =============================================================================
// Response Payloads
// =============================================================================

type healthResponse struct {
	Status string `json:"status"`
}

type caseListResponse struct {
	Cases []caseItem `json:"cases"`
	Total int        `json:"total"`
}

type caseItem struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

type networkResponse struct {
	Network graph.Network `json:"network"`
	Cached  bool          `json:"cached"`
}

type layoutResponse struct {
	CaseID      string        `json:"case_id"`
	NetworkHash string        `json:"network_hash"`
	Layout      layout.Result `json:"layout"`
	Stats       statsPayload  `json:"stats"`
	Cache       cachePayload  `json:"cache"`
}

type statsPayload struct {
	Entities      int `json:"entities"`
	Relationships int `json:"relationships"`
}

type cachePayload struct {
	FetchHit  bool `json:"fetch_hit"`
	LayoutHit bool `json:"layout_hit"`
}

type snapshotListResponse struct {
	Snapshots []store.Ref `json:"snapshots"`
	Total     int         `json:"total"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	if s.cases == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "case listing is not configured"))
		return
	}

	cases, err := s.cases.ListCases(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]caseItem, len(cases))
	for i, cs := range cases {
		items[i] = caseItem{
			ID:       cs.ID,
			Number:   cs.Number,
			Title:    cs.Title,
			Status:   cs.Status,
			Priority: cs.Priority,
		}
	}
	s.respondJSON(w, http.StatusOK, caseListResponse{Cases: items, Total: len(items)})
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	opts := pipelineOptions(r)

	n, cached, err := s.runner.FetchWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, networkResponse{Network: n, Cached: cached})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts := pipelineOptions(r)
	opts.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, layoutResult(opts.CaseID, result))
}

// handleExport returns a handler serving one rendered format directly.
func (s *Server) handleExport(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := pipelineOptions(r)
		opts.Formats = []string{format}

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(result.Artifacts[format])
	}
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	opts := pipelineOptions(r)
	opts.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap := store.NewSnapshot(opts.CaseID, result.NetworkHash, result.Network, result.Layout)
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, store.Ref{
		ID:          snap.ID,
		CaseID:      snap.CaseID,
		CreatedAt:   snap.CreatedAt,
		NetworkHash: snap.NetworkHash,
	})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	refs, err := s.store.List(r.Context(), caseID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if refs == nil {
		refs = []store.Ref{}
	}
	s.respondJSON(w, http.StatusOK, snapshotListResponse{Snapshots: refs, Total: len(refs)})
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Latest(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "snapshotID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

// =============================================================================
// Request Parsing
// =============================================================================

// pipelineOptions builds pipeline options from the URL parameter and query
// string. Filters repeat (?risk=critical&risk=high); refresh and detailed are
// boolean flags.
func pipelineOptions(r *http.Request) pipeline.Options {
	q := r.URL.Query()
	return pipeline.Options{
		CaseID:   chi.URLParam(r, "caseID"),
		Refresh:  q.Get("refresh") == "true",
		Clusters: q["cluster"],
		Risks:    q["risk"],
		Types:    q["type"],
		Detailed: q.Get("detailed") == "true",
	}
}

func layoutResult(caseID string, result *pipeline.Result) layoutResponse {
	return layoutResponse{
		CaseID:      caseID,
		NetworkHash: result.NetworkHash,
		Layout:      result.Layout,
		Stats: statsPayload{
			Entities:      result.Stats.EntityCount,
			Relationships: result.Stats.RelationshipCount,
		},
		Cache: cachePayload{
			FetchHit:  result.CacheInfo.FetchHit,
			LayoutHit: result.CacheInfo.LayoutHit,
		},
	}
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// writeError maps a pipeline or store error to an HTTP status and a JSON
// error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rateLimited *errors.RateLimitedError
	if stderrors.As(err, &rateLimited) {
		if rateLimited.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rateLimited.RetryAfter))
		}
		s.respondError(w, r, http.StatusTooManyRequests, errors.ErrCodeRateLimited, rateLimited.Error())
		return
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.respondError(w, r, statusForCode(code), code, errors.UserMessage(err))
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code errors.Code, message string) {
	s.logger.Warn("request failed",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"request_id", requestIDFromContext(r.Context()))
	s.respondJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: message,
	}})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCase,
		errors.ErrCodeInvalidFilter, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidLayout:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeCaseNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
