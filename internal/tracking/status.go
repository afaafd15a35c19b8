package tracking

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trackme/parcels/internal/metrics"
	"github.com/trackme/parcels/internal/storage"
)

type StatusChange struct {
	Status   storage.Status `json:"status"`
	Location string         `json:"location"`
	Notes    string         `json:"notes,omitempty"`
}

type StatusUpdateRequest struct {
	ParcelIDs []string `json:"parcelIds"`
	StatusChange
}

// StatusUpdateResult is the outcome for one parcel of a batch. Exactly one of Parcel and Err is set.
type StatusUpdateResult struct {
	ParcelID string
	Parcel   *storage.Parcel
	Err      error
}

func (c StatusChange) validate() (StatusChange, error) {
	status, err := storage.ParseStatus(string(c.Status))
	if err != nil {
		return c, err
	}
	c.Status = status
	c.Location = strings.TrimSpace(c.Location)
	if c.Location == "" {
		return c, &storage.ValidationError{Field: "location", Reason: "required"}
	}
	return c, nil
}

// UpdateStatus applies one status change to every id of the request. Validation failures reject
// the whole request before anything is written. After that each id is applied independently and
// concurrently: a missing parcel yields ErrParcelNotFound in its result while the others are kept.
// Results come back in request order.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, req StatusUpdateRequest) ([]StatusUpdateResult, error) {
	if len(req.ParcelIDs) == 0 {
		return nil, &storage.ValidationError{Field: "parcelIds", Reason: "at least one parcel id is required"}
	}
	for _, id := range req.ParcelIDs {
		if strings.TrimSpace(id) == "" {
			return nil, &storage.ValidationError{Field: "parcelIds", Reason: "blank parcel id"}
		}
	}
	change, err := req.StatusChange.validate()
	if err != nil {
		return nil, err
	}

	entry := storage.HistoryEntry{
		Status:    change.Status,
		Location:  change.Location,
		Notes:     change.Notes,
		Timestamp: s.now().UTC(),
		UpdatedBy: actor.Email,
	}

	results := make([]StatusUpdateResult, len(req.ParcelIDs))
	var g errgroup.Group
	g.SetLimit(s.batchLimit)
	for i, id := range req.ParcelIDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.applyStatus(ctx, id, entry)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// UpdateParcelStatus is UpdateStatus for a single parcel.
func (s *Service) UpdateParcelStatus(ctx context.Context, actor Actor, id string, change StatusChange) (*storage.Parcel, error) {
	results, err := s.UpdateStatus(ctx, actor, StatusUpdateRequest{
		ParcelIDs:    []string{id},
		StatusChange: change,
	})
	if err != nil {
		return nil, err
	}
	return results[0].Parcel, results[0].Err
}

func (s *Service) applyStatus(ctx context.Context, id string, entry storage.HistoryEntry) StatusUpdateResult {
	parcel, err := s.storage.AppendStatus(ctx, id, entry)
	if err != nil {
		if !errors.Is(err, storage.ErrParcelNotFound) {
			metrics.OperationErrorsTotal.WithLabelValues("update_status").Inc()
		}
		s.logger.Warn("Status update failed",
			zap.String("parcel_id", id),
			zap.String("status", string(entry.Status)),
			zap.Error(err))
		return StatusUpdateResult{ParcelID: id, Err: err}
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(entry.Status)).Inc()
	s.cache.Set(parcel)
	s.logger.Info("Parcel status updated",
		zap.String("parcel_id", id),
		zap.String("status", string(entry.Status)),
		zap.String("location", entry.Location),
		zap.String("actor", entry.UpdatedBy))
	return StatusUpdateResult{ParcelID: id, Parcel: parcel}
}
