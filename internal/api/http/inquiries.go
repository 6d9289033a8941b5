package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"locationapp-backend/internal/domain"
)

func (s *Server) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	var in inquiryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON body"))
		return
	}
	inquiry, err := in.toInquiry(s.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	receipt, err := s.inquiries.SubmitInquiry(r.Context(), inquiry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (s *Server) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.inquiries.GetReceipt(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

func (s *Server) handleRoomInquiries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, domain.NewValidationError("limit", "limit must be a positive number"))
			return
		}
		limit = n
	}
	inquiries, err := s.inquiries.ListForRoom(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]domain.InquiryRecord, len(inquiries))
	for i := range inquiries {
		out[i] = inquiries[i].Record()
	}
	writeJSON(w, http.StatusOK, map[string]any{"inquiries": out})
}
