package http

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/storage"
)

const maxMultipartMemory = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func listingFilterFromQuery(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	raw := domain.RawListingFilter{
		City:      q.Get("city"),
		BudgetMax: q.Get("budgetMax"),
		Status:    q.Get("status"),
	}
	return raw.Normalize()
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := s.listing.Browse(r.Context(), filter, r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(page))
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := s.listing.AdminList(r.Context(), filter, r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(page))
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.GetRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Record())
}

// handleAdminGetRoom loads the edit form. It shares the public view since
// rooms carry no admin-only fields.
func (s *Server) handleAdminGetRoom(w http.ResponseWriter, r *http.Request) {
	s.handleGetRoom(w, r)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDay("dateStart", q.Get("start"), s.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDay("dateEnd", q.Get("end"), s.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	if start == nil || end == nil {
		writeError(w, domain.NewValidationError("dateStart", "start and end are required"))
		return
	}
	est, err := s.inquiries.EstimatePrice(r.Context(), mux.Vars(r)["id"], *start, *end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var in roomInput
	files, cleanup, err := s.readRoomForm(r, "room", &in)
	defer cleanup()
	if err != nil {
		writeError(w, err)
		return
	}
	room, err := in.toRoom(s.loc)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.rooms.CreateRoom(r.Context(), room, files, uploadLogger("create"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created.Record())
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var in roomPatchInput
	files, cleanup, err := s.readRoomForm(r, "patch", &in)
	defer cleanup()
	if err != nil {
		writeError(w, err)
		return
	}

	current, err := s.rooms.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	patch, err := in.toPatch(current, s.loc)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.rooms.UpdateRoom(r.Context(), id, patch, files, uploadLogger("update"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.rooms.DeleteRoom(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var in toggleInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, domain.NewValidationError("body", "malformed JSON body"))
			return
		}
	}
	release, err := parseDay("releaseDate", in.ReleaseDate, s.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	room, err := s.rooms.QuickToggle(r.Context(), mux.Vars(r)["id"], release)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Record())
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		writeError(w, domain.NewValidationError("url", "url is required"))
		return
	}
	room, err := s.rooms.RemoveImage(r.Context(), mux.Vars(r)["id"], imageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Record())
}

// readRoomForm decodes the admin room form. A multipart body carries the
// JSON document in the field named field and the pictures under "images";
// any other body is the JSON document alone. The returned cleanup closes the
// opened parts and must always be called.
func (s *Server) readRoomForm(r *http.Request, field string, dst any) ([]storage.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return nil, noop, domain.NewValidationError("body", "malformed JSON body")
		}
		return nil, noop, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, noop, domain.NewValidationError("body", "malformed multipart body")
	}
	cleanup := func() { r.MultipartForm.RemoveAll() }

	if doc := r.FormValue(field); doc != "" {
		if err := json.Unmarshal([]byte(doc), dst); err != nil {
			return nil, cleanup, domain.NewValidationError(field, "malformed JSON document")
		}
	}

	headers := r.MultipartForm.File["images"]
	parts := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, p := range parts {
			p.Close()
		}
		cleanup()
	}

	maxBytes := s.cfg.Storage.MaxFileSize << 20
	files := make([]storage.Upload, 0, len(headers))
	for _, h := range headers {
		contentType := h.Header.Get("Content-Type")
		if !s.cfg.AllowsContentType(contentType) {
			return nil, closeAll, domain.NewValidationError("images", fmt.Sprintf("%s: unsupported file type %q", h.Filename, contentType))
		}
		if maxBytes > 0 && h.Size > maxBytes {
			return nil, closeAll, domain.NewValidationError("images", fmt.Sprintf("%s: file exceeds %d MB", h.Filename, s.cfg.Storage.MaxFileSize))
		}
		f, err := h.Open()
		if err != nil {
			return nil, closeAll, domain.NewValidationError("images", fmt.Sprintf("%s: unreadable file", h.Filename))
		}
		parts = append(parts, f)
		files = append(files, storage.Upload{Name: h.Filename, ContentType: contentType, Size: h.Size, Body: f})
	}
	return files, closeAll, nil
}

// uploadLogger reports per-file progress at 25% steps.
func uploadLogger(op string) storage.FileProgressFunc {
	return func(index int, name string, written, total int64) {
		if total <= 0 {
			return
		}
		step := total / 4
		if step == 0 || written == total || written%step < 32<<10 {
			logger.Debug("Image upload progress", "op", op, "index", index, "file", name, "written", written, "total", total)
		}
	}
}
