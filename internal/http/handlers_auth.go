package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bluepay/internal/auth"
	"bluepay/internal/core"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return credentialsRequest{}, core.NewValidationError("body", "invalid JSON")
	}
	return req, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.startSession(w, u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.startSession(w, u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "not authenticated"})
		return
	}
	u, err := s.auth.UserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// startSession issues a fresh token and sets the session cookie. A signing
// failure surfaces as an error so the handler never reports success for a
// session that was never established.
func (s *Server) startSession(w http.ResponseWriter, u core.User) error {
	token, err := s.newToken(u.ID, s.secret, s.sessionTTL)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	auth.SetSessionCookie(w, token, s.sessionTTL)
	return nil
}
