package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// auditLogMiddleware records every authenticated request. Status changes also carry the
// parcel's previous status, read before the handler runs.
func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r),
			Actor:     actorFromContext(r.Context()).Email,
			ParcelID:  mux.Vars(r)["id"],
		}

		rec := newResponseRecorder(w)

		if r.Body != nil {
			requestBody, err := io.ReadAll(http.MaxBytesReader(rec, r.Body, maxRequestBody))
			if err != nil {
				respondBodyError(rec, err)
				entry.StatusCode = rec.StatusCode()
				entry.Response = rec.Body()
				s.AuditManager.LogEntry(r.Context(), entry)
				return
			}
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)

			if entry.ParcelID != "" && entry.Handler == "handleUpdateParcelStatus" {
				var statusRequest struct {
					Status string `json:"status"`
				}
				if err := json.Unmarshal(requestBody, &statusRequest); err == nil {
					if parcel, err := s.tracker.GetParcel(r.Context(), entry.ParcelID); err == nil {
						entry.OldStatus = string(parcel.Status)
						entry.NewStatus = statusRequest.Status
					}
				}
			}
		}

		next.ServeHTTP(rec, r)

		entry.StatusCode = rec.StatusCode()
		entry.Response = rec.Body()

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

var routeHandlers = map[string]map[string]string{
	"/parcels": {
		http.MethodPost: "handleCreateParcel",
		http.MethodGet:  "handleListParcels",
	},
	"/parcels/status": {
		http.MethodPost: "handleBatchStatusUpdate",
	},
	"/parcels/{id}": {
		http.MethodGet:    "handleGetParcel",
		http.MethodPatch:  "handleUpdateParcel",
		http.MethodDelete: "handleDeleteParcel",
	},
	"/parcels/{id}/history": {
		http.MethodGet: "handleParcelHistory",
	},
	"/parcels/{id}/status": {
		http.MethodPut: "handleUpdateParcelStatus",
	},
	"/dashboard": {
		http.MethodGet: "handleDashboard",
	},
}

func handlerName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unknown"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unknown"
	}
	if name, ok := routeHandlers[tpl][r.Method]; ok {
		return name
	}
	return "unknown"
}
