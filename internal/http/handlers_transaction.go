package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"bluepay/internal/auth"
	"bluepay/internal/core"
)

type createTransactionRequest struct {
	Type        string      `json:"type"`
	Date        string      `json:"date"`
	Amount      amountField `json:"amount"`
	Description string      `json:"description"`
	Payer       string      `json:"payer"`
	WithdrawnBy string      `json:"withdrawnBy"`
	Notes       string      `json:"notes"`
}

// amountField accepts the amount as either a decimal string ("12.34") or a
// bare JSON number (12.34). Numbers keep their literal text via json.Number,
// so no float rounding sneaks in before parsing.
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amountCents"`
	Description string `json:"description,omitempty"`
	Payer       string `json:"payer,omitempty"`
	WithdrawnBy string `json:"withdrawnBy,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

type balanceResponse struct {
	Balance      int64  `json:"balance"`
	BalanceHuman string `json:"balanceHuman"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Date:        t.Date.Format(time.RFC3339),
		Amount:      t.Amount.Decimal(),
		AmountCents: t.Amount.Cents,
		Description: t.Description,
		Payer:       t.Payer,
		WithdrawnBy: t.WithdrawnBy,
		Notes:       t.Notes,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, core.NewValidationError("body", "invalid JSON"))
		return
	}

	draft, err := core.ParseDraft(core.RawDraft{
		Type:        req.Type,
		Date:        req.Date,
		Amount:      string(req.Amount),
		Description: req.Description,
		Payer:       req.Payer,
		WithdrawnBy: req.WithdrawnBy,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.Create(r.Context(), userID, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateUser(userID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// queryRange derives the [start, end] listing bounds from the query string.
// year+month selects a calendar month; startDate/endDate select an arbitrary
// range; with no parameters the whole ledger is listed.
func queryRange(r *http.Request) (start, end time.Time, cacheable bool, err error) {
	q := r.URL.Query()
	yearStr := strings.TrimSpace(q.Get("year"))
	monthStr := strings.TrimSpace(q.Get("month"))
	if yearStr != "" || monthStr != "" {
		year, yerr := strconv.Atoi(yearStr)
		if yerr != nil {
			return start, end, false, core.NewValidationError("year", "must be an integer")
		}
		month, merr := strconv.Atoi(monthStr)
		if merr != nil || month < 1 || month > 12 {
			return start, end, false, core.NewValidationError("month", "must be between 1 and 12")
		}
		start, end = core.MonthRange(year, month)
		return start, end, true, nil
	}

	start = time.Unix(0, 0).UTC()
	end = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		if start, err = core.ParseDate(v); err != nil {
			return start, end, false, core.NewValidationError("startDate", "not a valid ISO-8601 date")
		}
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		if end, err = core.ParseDate(v); err != nil {
			return start, end, false, core.NewValidationError("endDate", "not a valid ISO-8601 date")
		}
	}
	return start, end, false, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}

	start, end, cacheable, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := userCacheKey(userID) + "txs:" + start.Format(time.RFC3339) + ".." + end.Format(time.RFC3339)
	var txs []core.Transaction
	if cacheable {
		if cached, hit := s.monthCache.Get(key); hit {
			writeTransactionList(w, cached)
			return
		}
	}

	txs, err = s.ledger.List(r.Context(), userID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cacheable {
		s.monthCache.Set(key, txs)
	}
	writeTransactionList(w, txs)
}

func writeTransactionList(w http.ResponseWriter, txs []core.Transaction) {
	resp := transactionListResponse{Transactions: make([]transactionResponse, 0, len(txs))}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, core.NewValidationError("id", "must be an integer"))
		return
	}

	if err := s.ledger.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}

	key := userCacheKey(userID) + "balance"
	if cents, hit := s.balanceCache.Get(key); hit {
		writeJSON(w, http.StatusOK, balanceResponse{Balance: cents, BalanceHuman: core.Money{Cents: cents}.Decimal()})
		return
	}

	cents, err := s.ledger.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.balanceCache.Set(key, cents)
	writeJSON(w, http.StatusOK, balanceResponse{Balance: cents, BalanceHuman: core.Money{Cents: cents}.Decimal()})
}
