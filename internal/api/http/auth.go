package http

import (
	"encoding/json"
	"net/http"

	"locationapp-backend/internal/domain"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON body"))
		return
	}
	session, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, Email: session.Email, ExpiresAt: session.ExpiresAt})
}

// handleSession reports who the bearer token belongs to.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := AdminFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	resp := map[string]any{"email": claims.Email}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}
