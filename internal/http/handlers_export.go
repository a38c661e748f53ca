package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bluepay/internal/auth"
	"bluepay/internal/core"
	"bluepay/internal/export"
)

type exportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type exportJobResponse struct {
	JobID string `json:"jobId"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

func exportMonth(r *http.Request) (year, month int, err error) {
	q := r.URL.Query()
	year, yerr := strconv.Atoi(strings.TrimSpace(q.Get("year")))
	if yerr != nil {
		return 0, 0, core.NewValidationError("year", "must be an integer")
	}
	month, merr := strconv.Atoi(strings.TrimSpace(q.Get("month")))
	if merr != nil || month < 1 || month > 12 {
		return 0, 0, core.NewValidationError("month", "must be between 1 and 12")
	}
	return year, month, nil
}

// handleExportCSV streams one calendar month as a CSV attachment.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}

	year, month, err := exportMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.ledger.ListMonth(r.Context(), userID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(year, month)+`"`)
	if err := export.WriteCSV(w, txs); err != nil {
		// Headers are gone at this point; all we can do is log.
		slog.ErrorContext(r.Context(), "CSV export write failed",
			"user_id", userID, "year", year, "month", month, "error", err)
	}
}

// handleRequestExport enqueues an asynchronous spreadsheet export job.
func (s *Server) handleRequestExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, core.NewValidationError("body", "invalid JSON"))
		return
	}

	jobID, err := s.ledger.RequestExport(r.Context(), userID, req.Year, req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, exportJobResponse{JobID: jobID, Year: req.Year, Month: req.Month})
}
