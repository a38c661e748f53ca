package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bluepay/internal/auth"
	"bluepay/internal/core"
	applog "bluepay/internal/log"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed encoding response body", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes:
// validation errors become 400, missing rows 404, bad credentials 401,
// everything else 500 with the detail kept out of the body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: verr.Reason, Field: verr.Field})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, auth.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: auth.ErrBadCredentials.Error()})
	default:
		fields := applog.NewFields().
			WithError(err).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"))
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
