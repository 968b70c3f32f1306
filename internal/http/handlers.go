package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"housebudget/internal/core"
	"housebudget/internal/ledger"
	"housebudget/internal/loader"
	applog "housebudget/internal/log"
	"housebudget/internal/services"
)

type statementRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type importResponse struct {
	services.ImportReport
	Accepted int `json:"accepted"`
}

func newImportResponse(r services.ImportReport) importResponse {
	if r.IDs == nil {
		r.IDs = []int64{}
	}
	if r.Rejected == nil {
		r.Rejected = []core.Rejection{}
	}
	return importResponse{ImportReport: r, Accepted: r.Accepted()}
}

// handleListTransactions handles GET /api/transactions.
// Query: include_transfers (bool), month (YYYY-MM, optional).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	includeTransfers, err := queryBool(r, "include_transfers")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" {
		if _, err := core.ParseMonth(month); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
			return
		}
	}

	txs, err := s.svc.Transactions(r.Context(), includeTransfers)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list transactions")
		return
	}
	if month != "" {
		txs = ledger.InMonth(txs, month)
	}
	if txs == nil {
		txs = []core.Classified{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

// handleCreateTransaction handles POST /api/transactions. The body is a
// single record with bank_name, month, receiver, category and amount.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var c core.Candidate
	if err := decodeJSON(w, r, &c); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	e, err := c.Entry()
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	tx, err := s.svc.CreateTransaction(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create transaction")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

// handleDeleteTransaction handles DELETE /api/transactions/{id}.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction id")
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMonths handles GET /api/months.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months, def, err := s.svc.Months(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list months")
		return
	}
	if months == nil {
		months = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"months":  months,
		"default": def,
	})
}

// handleSummaries handles GET /api/summaries: one summary per month, most
// recent first.
func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	sums, err := s.svc.Summaries(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to summarize ledger")
		return
	}
	if sums == nil {
		sums = []core.MonthlySummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": sums})
}

// resolveMonth returns the month query parameter, or the default month when
// it is absent. ok is false when a response has already been written.
func (s *Server) resolveMonth(w http.ResponseWriter, r *http.Request) (month string, ok bool) {
	month = strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" {
		return month, true
	}
	_, def, err := s.svc.Months(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list months")
		return "", false
	}
	if def == "" {
		writeJSONError(w, http.StatusNotFound, "not_found", "The ledger has no months yet")
		return "", false
	}
	return def, true
}

// handleSummary handles GET /api/summary?month=YYYY-MM.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, ok := s.resolveMonth(w, r)
	if !ok {
		return
	}
	sum, err := s.svc.Summary(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err, "Failed to summarize month")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": sum})
}

// handleBreakdown handles GET /api/breakdown?month=&kind=expense|income&threshold=.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	kind, err := services.ParseBreakdownKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	threshold, err := queryThreshold(r, s.svc.Threshold())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	month, ok := s.resolveMonth(w, r)
	if !ok {
		return
	}

	buckets, err := s.svc.Breakdown(r.Context(), month, kind, threshold)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build breakdown")
		return
	}
	if buckets == nil {
		buckets = []core.Bucket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":     month,
		"kind":      kind,
		"threshold": threshold,
		"buckets":   buckets,
	})
}

// handleImport handles POST /api/imports. The body is a YAML or JSON
// ledger document; ?source= labels the batch in logs and the report.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "invalid_request", "Request body too large")
		return
	}
	candidates, err := loader.ParseCandidates(body)
	if err != nil {
		desc := "Body is not a YAML or JSON ledger document"
		if errors.Is(err, loader.ErrUnsupportedLayout) {
			desc = err.Error()
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_request", desc)
		return
	}

	source := sanitizeLabel(r.URL.Query().Get("source"), "api")
	report, err := s.svc.Import(r.Context(), source, candidates)
	if err != nil {
		writeServiceError(w, r, err, "Failed to store imported rows")
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(report))
}

func (s *Server) decodeStatement(w http.ResponseWriter, r *http.Request) (statementRequest, bool) {
	var req statementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return req, false
	}
	req.Source = sanitizeLabel(req.Source, "api")
	return req, true
}

// handleSubmitStatement handles POST /api/statements: the text is queued
// for the extraction worker and a job id is returned.
func (s *Server) handleSubmitStatement(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}
	jobID, err := s.svc.SubmitStatement(r.Context(), req.Source, req.Text)
	if err != nil {
		writeServiceError(w, r, err, "Failed to queue statement")
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Statement queued",
		applog.FieldJobID, jobID,
		applog.FieldSource, req.Source)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": "queued",
	})
}

// handleExtractStatement handles POST /api/statements/extract: the
// assistant runs inline and its rows are imported before replying.
func (s *Server) handleExtractStatement(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_failed", "statement text is empty")
		return
	}
	report, err := s.svc.ExtractStatement(r.Context(), req.Source, req.Text)
	if err != nil {
		writeServiceError(w, r, err, "Failed to extract statement")
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(report))
}
