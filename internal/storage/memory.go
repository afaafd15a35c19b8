package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage keeps parcels in process memory. Callers always receive copies,
// and listings come back in insertion order.
type MemoryStorage struct {
	mu      sync.RWMutex
	parcels map[string]*Parcel
	order   []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		parcels: make(map[string]*Parcel),
	}
}

func (s *MemoryStorage) CreateParcel(_ context.Context, parcel Parcel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.parcels[parcel.ID]; exists {
		return fmt.Errorf("parcel %s already exists", parcel.ID)
	}
	for _, p := range s.parcels {
		if p.TrackingNumber == parcel.TrackingNumber {
			return fmt.Errorf("tracking number %s already exists", parcel.TrackingNumber)
		}
	}

	s.parcels[parcel.ID] = parcel.Clone()
	s.order = append(s.order, parcel.ID)
	return nil
}

func (s *MemoryStorage) GetParcel(_ context.Context, id string) (*Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parcels[id]
	if !ok {
		return nil, ErrParcelNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStorage) GetParcelByTrackingNumber(_ context.Context, trackingNumber string) (*Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.parcels {
		if p.TrackingNumber == trackingNumber {
			return p.Clone(), nil
		}
	}
	return nil, ErrParcelNotFound
}

func (s *MemoryStorage) ListParcels(_ context.Context, filter ListFilter) ([]Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Parcel, 0, len(s.order))
	for _, id := range s.order {
		p := s.parcels[id]
		if filter.Match(p) {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStorage) UpdateParcel(_ context.Context, parcel Parcel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.parcels[parcel.ID]
	if !ok {
		return ErrParcelNotFound
	}

	// history and status only change through AppendStatus
	updated := parcel.Clone()
	updated.Status = current.Status
	updated.StatusHistory = current.StatusHistory
	s.parcels[parcel.ID] = updated
	return nil
}

func (s *MemoryStorage) DeleteParcel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parcels[id]; !ok {
		return ErrParcelNotFound
	}

	delete(s.parcels, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStorage) AppendStatus(_ context.Context, id string, entry HistoryEntry) (*Parcel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parcels[id]
	if !ok {
		return nil, ErrParcelNotFound
	}

	entry = after(p.StatusHistory, entry)
	p.StatusHistory = append(p.StatusHistory, entry)
	p.Status = entry.Status
	p.UpdatedAt = entry.Timestamp
	return p.Clone(), nil
}

func (s *MemoryStorage) GetStatusHistory(_ context.Context, id string) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parcels[id]
	if !ok {
		return nil, ErrParcelNotFound
	}
	return p.Clone().StatusHistory, nil
}
