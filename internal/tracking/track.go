package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/trackme/parcels/internal/metrics"
	"github.com/trackme/parcels/internal/storage"
)

// TrackingEvent is a history entry as shown to the public. The actor is not exposed.
type TrackingEvent struct {
	Status      storage.Status `json:"status"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Notes       string         `json:"notes,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// TrackingView is what an anonymous tracking lookup returns.
type TrackingView struct {
	TrackingNumber    string          `json:"trackingNumber"`
	Status            storage.Status  `json:"status"`
	StatusDescription string          `json:"statusDescription"`
	CurrentLocation   string          `json:"currentLocation,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	History           []TrackingEvent `json:"history"`
}

// Track looks a parcel up by tracking number, serving parcels that are still moving from the cache.
func (s *Service) Track(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	if parcel, ok := s.cache.Get(trackingNumber); ok {
		metrics.TrackingLookupsTotal.WithLabelValues("cache_hit").Inc()
		return newTrackingView(parcel), nil
	}

	parcel, err := s.storage.GetParcelByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, storage.ErrParcelNotFound) {
			metrics.TrackingLookupsTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.OperationErrorsTotal.WithLabelValues("track").Inc()
		}
		return nil, err
	}

	metrics.TrackingLookupsTotal.WithLabelValues("cache_miss").Inc()
	s.cache.Set(parcel)
	return newTrackingView(parcel), nil
}

func newTrackingView(p *storage.Parcel) *TrackingView {
	view := &TrackingView{
		TrackingNumber:    p.TrackingNumber,
		Status:            p.Status,
		StatusDescription: p.Status.Description(),
		EstimatedDelivery: p.EstimatedDelivery,
		UpdatedAt:         p.UpdatedAt,
		History:           make([]TrackingEvent, len(p.StatusHistory)),
	}
	for i, e := range p.StatusHistory {
		view.History[i] = TrackingEvent{
			Status:      e.Status,
			Description: e.Status.Description(),
			Location:    e.Location,
			Notes:       e.Notes,
			Timestamp:   e.Timestamp,
		}
	}
	if last, ok := p.LastEntry(); ok {
		view.CurrentLocation = last.Location
	}
	return view
}
