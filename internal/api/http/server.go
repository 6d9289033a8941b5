package http

import (
	"net/netip"
	"time"

	"github.com/gorilla/mux"

	"locationapp-backend/internal/config"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/service"
	"locationapp-backend/internal/storage"
)

// Server holds the HTTP handlers of the public and admin API.
type Server struct {
	rooms     service.RoomService
	listing   service.ListingService
	inquiries service.InquiryService
	auth      service.AuthService
	files     *storage.MockStorageService
	cfg       *config.Config
	loc       *time.Location
	limiter   *RateLimiter
	proxies   []netip.Prefix
}

type Services struct {
	Rooms     service.RoomService
	Listing   service.ListingService
	Inquiries service.InquiryService
	Auth      service.AuthService
}

// NewServer builds the API. files is only set when images are kept on the
// local filesystem and must be served by this process.
func NewServer(services Services, files *storage.MockStorageService, cfg *config.Config) *Server {
	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Warn("Ignoring trusted proxies", "error", err)
		proxies = nil
	}
	return &Server{
		rooms:     services.Rooms,
		listing:   services.Listing,
		inquiries: services.Inquiries,
		auth:      services.Auth,
		files:     files,
		cfg:       cfg,
		loc:       cfg.Location(),
		limiter:   NewRateLimiter(cfg.Inquiry.RateLimitPerMinute),
		proxies:   proxies,
	}
}

// Router registers every named route. Route names drive the security level
// lookup in the auth middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware, loggingMiddleware, s.authMiddleware, s.rateLimitMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET").Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rooms", s.handleBrowse).Methods("GET").Name("rooms.list")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET").Name("rooms.get")
	api.HandleFunc("/rooms/{id}/estimate", s.handleEstimate).Methods("GET").Name("rooms.estimate")
	api.HandleFunc("/inquiries", s.handleCreateInquiry).Methods("POST").Name("inquiries.create")
	api.HandleFunc("/inquiries/{id}", s.handleGetInquiry).Methods("GET").Name("inquiries.get")
	if s.files != nil {
		api.HandleFunc("/download/{token}", s.handleDownload).Methods("GET").Name("files.download")
	}

	api.HandleFunc("/admin/login", s.handleLogin).Methods("POST").Name("admin.login")
	api.HandleFunc("/admin/session", s.handleSession).Methods("GET").Name("admin.session")
	api.HandleFunc("/admin/rooms", s.handleAdminList).Methods("GET").Name("admin.rooms.list")
	api.HandleFunc("/admin/rooms", s.handleCreateRoom).Methods("POST").Name("admin.rooms.create")
	api.HandleFunc("/admin/rooms/{id}", s.handleAdminGetRoom).Methods("GET").Name("admin.rooms.get")
	api.HandleFunc("/admin/rooms/{id}", s.handleUpdateRoom).Methods("PATCH").Name("admin.rooms.update")
	api.HandleFunc("/admin/rooms/{id}", s.handleDeleteRoom).Methods("DELETE").Name("admin.rooms.delete")
	api.HandleFunc("/admin/rooms/{id}/toggle", s.handleToggle).Methods("POST").Name("admin.rooms.toggle")
	api.HandleFunc("/admin/rooms/{id}/images", s.handleRemoveImage).Methods("DELETE").Name("admin.rooms.images.delete")
	api.HandleFunc("/admin/rooms/{id}/inquiries", s.handleRoomInquiries).Methods("GET").Name("admin.rooms.inquiries")

	return r
}
