package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/trackme/parcels/internal/repository"
	"github.com/trackme/parcels/internal/storage"
	"github.com/trackme/parcels/internal/tracking"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userView  `json:"user"`
}

type userView struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	CourierServiceID string `json:"courierServiceId"`
}

type historyResponse struct {
	ParcelID string                 `json:"parcelId"`
	History  []storage.HistoryEntry `json:"history"`
}

type batchItem struct {
	ParcelID string          `json:"parcelId"`
	Parcel   *storage.Parcel `json:"parcel,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Updated int         `json:"updated"`
	Failed  int         `json:"failed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "Email and password are required")
		return
	}

	user, err := s.userRepo.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid credentials")
			return
		}
		s.respondServiceError(w, r, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.logger.Info("User logged in", zap.String("email", user.Email))
	respondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: userView{
			ID:               user.ID,
			Email:            user.Email,
			Name:             user.Name,
			Role:             user.Role,
			CourierServiceID: user.CourierServiceID,
		},
	})
}

func (s *Server) handleCreateParcel(w http.ResponseWriter, r *http.Request) {
	var req tracking.CreateParcelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	parcel, err := s.tracker.CreateParcel(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, parcel)
}

func (s *Server) handleListParcels(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := tracking.Query{
		Scope:  actorFromContext(r.Context()).CourierServiceID,
		Text:   values.Get("q"),
		Status: values.Get("status"),
		SortBy: tracking.SortKey(values.Get("sortBy")),
		Order:  tracking.SortOrder(values.Get("sortOrder")),
	}

	result, err := s.tracker.ListParcels(r.Context(), q)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetParcel(w http.ResponseWriter, r *http.Request) {
	parcel, err := s.tracker.GetParcel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, parcel)
}

func (s *Server) handleUpdateParcel(w http.ResponseWriter, r *http.Request) {
	var patch tracking.ParcelPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondBodyError(w, err)
		return
	}

	parcel, err := s.tracker.UpdateParcel(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, parcel)
}

func (s *Server) handleDeleteParcel(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteParcel(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleParcelHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	history, err := s.tracker.GetStatusHistory(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, historyResponse{ParcelID: id, History: history})
}

func (s *Server) handleUpdateParcelStatus(w http.ResponseWriter, r *http.Request) {
	var change tracking.StatusChange
	if err := decodeJSON(w, r, &change); err != nil {
		respondBodyError(w, err)
		return
	}

	parcel, err := s.tracker.UpdateParcelStatus(r.Context(), actorFromContext(r.Context()), mux.Vars(r)["id"], change)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, parcel)
}

func (s *Server) handleBatchStatusUpdate(w http.ResponseWriter, r *http.Request) {
	var req tracking.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	results, err := s.tracker.UpdateStatus(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	resp := batchResponse{Results: make([]batchItem, len(results))}
	for i, res := range results {
		item := batchItem{ParcelID: res.ParcelID, Parcel: res.Parcel}
		if res.Err != nil {
			item.Error = batchErrorMessage(res.Err)
			resp.Failed++
		} else {
			resp.Updated++
		}
		resp.Results[i] = item
	}

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, resp)
}

func batchErrorMessage(err error) string {
	if errors.Is(err, storage.ErrParcelNotFound) {
		return "Parcel not found"
	}
	if storage.IsValidation(err) {
		return err.Error()
	}
	return "Internal server error"
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.tracker.Dashboard(r.Context(), actorFromContext(r.Context()).CourierServiceID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	view, err := s.tracker.Track(r.Context(), mux.Vars(r)["trackingNumber"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}
