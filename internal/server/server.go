//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/trackme/parcels/internal/repository"
	"github.com/trackme/parcels/internal/storage"
	"github.com/trackme/parcels/internal/tracking"
)

type Tracker interface {
	CreateParcel(ctx context.Context, actor tracking.Actor, req tracking.CreateParcelRequest) (*storage.Parcel, error)
	GetParcel(ctx context.Context, id string) (*storage.Parcel, error)
	ListParcels(ctx context.Context, q tracking.Query) (*tracking.QueryResult, error)
	UpdateParcel(ctx context.Context, id string, patch tracking.ParcelPatch) (*storage.Parcel, error)
	DeleteParcel(ctx context.Context, id string) error
	GetStatusHistory(ctx context.Context, id string) ([]storage.HistoryEntry, error)
	UpdateParcelStatus(ctx context.Context, actor tracking.Actor, id string, change tracking.StatusChange) (*storage.Parcel, error)
	UpdateStatus(ctx context.Context, actor tracking.Actor, req tracking.StatusUpdateRequest) ([]tracking.StatusUpdateResult, error)
	Dashboard(ctx context.Context, scope string) (*tracking.Dashboard, error)
	Track(ctx context.Context, trackingNumber string) (*tracking.TrackingView, error)
}

type UserRepo interface {
	Authenticate(ctx context.Context, email, password string) (*repository.User, error)
}

type Config struct {
	JWTSecret      []byte
	TokenTTL       time.Duration
	TrackRateLimit float64
	TrackBurst     int
	AuditWorkers   int
	AuditBatchSize int
	AuditTimeout   time.Duration
}

type Server struct {
	tracker      Tracker
	userRepo     UserRepo
	tokens       *TokenIssuer
	trackLimiter *rate.Limiter
	logger       *zap.Logger
	server       *http.Server
	AuditManager *AuditManager
}

func New(tracker Tracker, userRepo UserRepo, cfg Config, logger *zap.Logger) *Server {
	return &Server{
		tracker:      tracker,
		userRepo:     userRepo,
		tokens:       NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		trackLimiter: rate.NewLimiter(rate.Limit(cfg.TrackRateLimit), cfg.TrackBurst),
		logger:       logger,
		AuditManager: NewAuditManager(cfg.AuditWorkers, cfg.AuditBatchSize, cfg.AuditTimeout, logger),
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	s.AuditManager.Start()

	s.logger.Info("Server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("HTTP server shutdown completed")

	s.AuditManager.Shutdown(ctx)
	s.logger.Info("Server shutdown completed successfully")

	return nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/track/{trackingNumber}", s.rateLimitMiddleware(http.HandlerFunc(s.handleTrack))).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.authMiddleware, s.auditLogMiddleware)

	admin := []string{repository.RoleAdmin}
	staff := []string{repository.RoleAdmin, repository.RoleCourier}

	api.HandleFunc("/parcels", requireRole(s.handleCreateParcel, admin...)).Methods(http.MethodPost)
	api.HandleFunc("/parcels", s.handleListParcels).Methods(http.MethodGet)
	api.HandleFunc("/parcels/status", requireRole(s.handleBatchStatusUpdate, staff...)).Methods(http.MethodPost)
	api.HandleFunc("/parcels/{id}", s.handleGetParcel).Methods(http.MethodGet)
	api.HandleFunc("/parcels/{id}", requireRole(s.handleUpdateParcel, admin...)).Methods(http.MethodPatch)
	api.HandleFunc("/parcels/{id}", requireRole(s.handleDeleteParcel, admin...)).Methods(http.MethodDelete)
	api.HandleFunc("/parcels/{id}/history", s.handleParcelHistory).Methods(http.MethodGet)
	api.HandleFunc("/parcels/{id}/status", requireRole(s.handleUpdateParcelStatus, staff...)).Methods(http.MethodPut)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	return r
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.trackLimiter.Allow() {
			w.Header().Set("Retry-After", "1")
			respondError(w, http.StatusTooManyRequests, codeRateLimited, "Too many tracking requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	codeValidation   = "validation_error"
	codeNotFound     = "not_found"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeTooLarge     = "request_too_large"
	codeRateLimited  = "rate_limited"
	codeInternal     = "internal"
)

// maxRequestBody caps every JSON request body, including the copy kept for the audit log.
const maxRequestBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondServiceError maps tracking/storage errors onto HTTP statuses. Unknown errors are logged
// and reported without detail.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *storage.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, codeValidation, ve.Error())
	case errors.Is(err, storage.ErrParcelNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "Parcel not found")
	default:
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondBodyError reports a request body that could not be read or decoded.
func respondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, codeTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	respondError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
}
