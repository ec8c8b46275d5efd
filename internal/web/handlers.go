package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rezmoss/sctk/internal/analysis"
	"github.com/rezmoss/sctk/internal/expression"
	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/pathmatch"
	"github.com/rezmoss/sctk/internal/table"
	"github.com/rezmoss/sctk/internal/version"
)

// SimplifyRequest is the body of POST /api/simplify
type SimplifyRequest struct {
	Expression        string `json:"expression"`
	PromoteExceptions bool   `json:"promote_exceptions"`
}

// SimplifyResponse is returned by POST /api/simplify
type SimplifyResponse struct {
	Expression string `json:"expression"`
	Simplified string `json:"simplified"`
}

// MatchRequest is the body of POST /api/match
type MatchRequest struct {
	Left            []*table.Row `json:"left"`
	Right           []*table.Row `json:"right"`
	Key1            string       `json:"key1"`
	Key2            string       `json:"key2"`
	BestMatchesOnly bool         `json:"best_matches_only"`
}

// TableResponse carries a table with its column order
type TableResponse struct {
	Headers []string     `json:"headers"`
	Rows    []*table.Row `json:"rows"`
}

// EnrichRequest is the body of POST /api/enrich
type EnrichRequest struct {
	Expression string `json:"expression"`
	Owner      string `json:"owner,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error    string `json:"error"`
	Position *int   `json:"position,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var perr *expression.ParseError
	if errors.As(err, &perr) {
		pos := perr.Pos
		resp.Position = &pos
	}
	writeJSON(w, status, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var req SimplifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expr := req.Expression
	if req.PromoteExceptions {
		expr = expression.PromoteExceptions(expr)
	}
	simplified, err := expression.Simplify(expr)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, SimplifyResponse{Expression: req.Expression, Simplified: simplified})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	left := table.FromRows(req.Left)
	right := table.FromRows(req.Right)
	results, err := pathmatch.Match(left, right, pathmatch.Options{
		Key1:            req.Key1,
		Key2:            req.Key2,
		BestMatchesOnly: req.BestMatchesOnly,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out := pathmatch.ToTable(results, left.Headers, right.Headers, req.Key1)
	writeJSON(w, http.StatusOK, TableResponse{Headers: out.Headers, Rows: out.Rows})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	paths := r.URL.Query()["path"]
	if len(paths) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("path query required"))
		return
	}

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	if s.state.Index == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no package index loaded"))
		return
	}
	writeJSON(w, http.StatusOK, s.state.Index.Matches(paths))
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	if s.state.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no license data loaded"))
		return
	}
	e := license.NewEnricher(s.state.Catalog, s.log.WithField("handler", "enrich"))
	writeJSON(w, http.StatusOK, e.Generate(req.Expression, req.Owner))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var rows []*table.Row
	if !decodeBody(w, r, &rows) {
		return
	}

	top := 5
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid top value: "+v))
			return
		}
		top = n
	}
	writeJSON(w, http.StatusOK, analysis.ComputeStats(table.FromRows(rows), top))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, version.Get())
}
