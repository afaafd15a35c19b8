package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackme/parcels/internal/metrics"
	"github.com/trackme/parcels/internal/storage"
)

const (
	trackingNumberPrefix = "TRK"
	trackingNumberLen    = 9
	defaultOrigin        = "Collection Point"
	defaultBatchLimit    = 8
)

var trackingNumberChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// Actor is the authenticated caller. CourierServiceID is the scope new parcels are
// created in and listings are restricted to; empty means every scope.
type Actor struct {
	Email            string
	Role             string
	CourierServiceID string
}

type Service struct {
	storage    Storage
	cache      Cache
	logger     *zap.Logger
	now        func() time.Time
	batchLimit int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithBatchLimit caps how many parcels of one batch status update are written concurrently.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

func NewService(st Storage, cache Cache, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		storage:    st,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
		batchLimit: defaultBatchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateParcelRequest struct {
	Sender            storage.Party `json:"sender"`
	Recipient         storage.Party `json:"recipient"`
	Item              storage.Item  `json:"item"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery,omitempty"`
	OriginLocation    string        `json:"originLocation,omitempty"`
}

// CreateParcel registers a new parcel in the actor's scope with status Created
// and a single history entry at the origin location.
func (s *Service) CreateParcel(ctx context.Context, actor Actor, req CreateParcelRequest) (*storage.Parcel, error) {
	now := s.now().UTC()

	origin := strings.TrimSpace(req.OriginLocation)
	if origin == "" {
		origin = defaultOrigin
	}

	parcel := storage.Parcel{
		ID:                uuid.NewString(),
		TrackingNumber:    newTrackingNumber(),
		CourierServiceID:  actor.CourierServiceID,
		Sender:            req.Sender,
		Recipient:         req.Recipient,
		Item:              req.Item,
		Status:            storage.StatusCreated,
		EstimatedDelivery: req.EstimatedDelivery,
		CreatedAt:         now,
		UpdatedAt:         now,
		StatusHistory: []storage.HistoryEntry{{
			Status:    storage.StatusCreated,
			Location:  origin,
			Notes:     "Parcel created",
			Timestamp: now,
			UpdatedBy: actor.Email,
		}},
	}

	if err := validateParcel(&parcel); err != nil {
		return nil, err
	}

	if err := s.storage.CreateParcel(ctx, parcel); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_parcel").Inc()
		return nil, fmt.Errorf("failed to create parcel: %w", err)
	}

	metrics.ParcelsCreatedTotal.Inc()
	metrics.StatusUpdatesTotal.WithLabelValues(string(storage.StatusCreated)).Inc()
	s.cache.Set(&parcel)

	s.logger.Info("Parcel created",
		zap.String("parcel_id", parcel.ID),
		zap.String("tracking_number", parcel.TrackingNumber),
		zap.String("actor", actor.Email))
	return &parcel, nil
}

func (s *Service) GetParcel(ctx context.Context, id string) (*storage.Parcel, error) {
	return s.storage.GetParcel(ctx, id)
}

func (s *Service) GetParcelByTrackingNumber(ctx context.Context, trackingNumber string) (*storage.Parcel, error) {
	return s.storage.GetParcelByTrackingNumber(ctx, trackingNumber)
}

func (s *Service) GetStatusHistory(ctx context.Context, id string) ([]storage.HistoryEntry, error) {
	return s.storage.GetStatusHistory(ctx, id)
}

type PartyPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

type ItemPatch struct {
	Description *string             `json:"description,omitempty"`
	Weight      *float64            `json:"weight,omitempty"`
	Dimensions  *storage.Dimensions `json:"dimensions,omitempty"`
	Category    *string             `json:"category,omitempty"`
}

// ParcelPatch lists the fields a partial update may change. Status is absent on purpose:
// it only moves through UpdateStatus so that it keeps matching the history.
type ParcelPatch struct {
	Sender            *PartyPatch `json:"sender,omitempty"`
	Recipient         *PartyPatch `json:"recipient,omitempty"`
	Item              *ItemPatch  `json:"item,omitempty"`
	EstimatedDelivery *time.Time  `json:"estimatedDelivery,omitempty"`
}

func (p ParcelPatch) empty() bool {
	return p.Sender == nil && p.Recipient == nil && p.Item == nil && p.EstimatedDelivery == nil
}

func (p *PartyPatch) apply(dst *storage.Party) {
	if p == nil {
		return
	}
	setString(&dst.Name, p.Name)
	setString(&dst.Email, p.Email)
	setString(&dst.Phone, p.Phone)
	setString(&dst.Address, p.Address)
}

func (p *ItemPatch) apply(dst *storage.Item) {
	if p == nil {
		return
	}
	setString(&dst.Description, p.Description)
	setString(&dst.Category, p.Category)
	if p.Weight != nil {
		dst.Weight = *p.Weight
	}
	if p.Dimensions != nil {
		dst.Dimensions = *p.Dimensions
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// UpdateParcel merges patch into the stored parcel and refreshes UpdatedAt.
func (s *Service) UpdateParcel(ctx context.Context, id string, patch ParcelPatch) (*storage.Parcel, error) {
	if patch.empty() {
		return nil, &storage.ValidationError{Field: "body", Reason: "no fields to update"}
	}

	parcel, err := s.storage.GetParcel(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Sender.apply(&parcel.Sender)
	patch.Recipient.apply(&parcel.Recipient)
	patch.Item.apply(&parcel.Item)
	if patch.EstimatedDelivery != nil {
		eta := *patch.EstimatedDelivery
		parcel.EstimatedDelivery = &eta
	}
	if err := validateParcel(parcel); err != nil {
		return nil, err
	}
	parcel.UpdatedAt = s.now().UTC()

	if err := s.storage.UpdateParcel(ctx, *parcel); err != nil {
		if !errors.Is(err, storage.ErrParcelNotFound) {
			metrics.OperationErrorsTotal.WithLabelValues("update_parcel").Inc()
		}
		return nil, err
	}

	s.cache.Set(parcel)
	s.logger.Info("Parcel updated", zap.String("parcel_id", id))
	return parcel, nil
}

// DeleteParcel removes the parcel together with its history. A missing id is ErrParcelNotFound.
func (s *Service) DeleteParcel(ctx context.Context, id string) error {
	parcel, err := s.storage.GetParcel(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteParcel(ctx, id); err != nil {
		if !errors.Is(err, storage.ErrParcelNotFound) {
			metrics.OperationErrorsTotal.WithLabelValues("delete_parcel").Inc()
		}
		return err
	}

	metrics.ParcelsDeletedTotal.Inc()
	s.cache.Delete(parcel.TrackingNumber)
	s.logger.Info("Parcel deleted",
		zap.String("parcel_id", id),
		zap.String("tracking_number", parcel.TrackingNumber))
	return nil
}

func validateParcel(p *storage.Parcel) error {
	required := []struct {
		field string
		value string
	}{
		{"sender.name", p.Sender.Name},
		{"recipient.name", p.Recipient.Name},
		{"recipient.address", p.Recipient.Address},
		{"item.description", p.Item.Description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &storage.ValidationError{Field: r.field, Reason: "required"}
		}
	}

	d := p.Item.Dimensions
	if p.Item.Weight < 0 {
		return &storage.ValidationError{Field: "item.weight", Reason: "must not be negative"}
	}
	if d.Length < 0 || d.Width < 0 || d.Height < 0 {
		return &storage.ValidationError{Field: "item.dimensions", Reason: "must not be negative"}
	}
	return nil
}

func newTrackingNumber() string {
	return trackingNumberPrefix + uniuri.NewLenChars(trackingNumberLen, trackingNumberChars)
}
