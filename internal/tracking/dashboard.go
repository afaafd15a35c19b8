package tracking

import (
	"context"
	"sort"
	"time"

	"github.com/jinzhu/now"

	"github.com/trackme/parcels/internal/storage"
)

const recentParcelsLimit = 5

type StatusCount struct {
	Status      storage.Status `json:"status"`
	Description string         `json:"description"`
	Count       int            `json:"count"`
}

// Dashboard summarises one scope. Pending counts parcels still in Created;
// Failed counts Failed Delivery and Returned together.
type Dashboard struct {
	TotalParcels  int              `json:"totalParcels"`
	Delivered     int              `json:"delivered"`
	InTransit     int              `json:"inTransit"`
	Pending       int              `json:"pending"`
	Failed        int              `json:"failed"`
	CreatedToday  int              `json:"createdToday"`
	ByStatus      []StatusCount    `json:"byStatus"`
	RecentParcels []storage.Parcel `json:"recentParcels"`
}

// Dashboard is recomputed from the full parcel set of the scope on every call.
func (s *Service) Dashboard(ctx context.Context, scope string) (*Dashboard, error) {
	parcels, err := s.storage.ListParcels(ctx, storage.ListFilter{CourierServiceID: scope})
	if err != nil {
		return nil, err
	}
	return buildDashboard(parcels, s.now().UTC()), nil
}

func buildDashboard(parcels []storage.Parcel, at time.Time) *Dashboard {
	day := now.With(at)
	dayStart, dayEnd := day.BeginningOfDay(), day.EndOfDay()

	counts := make(map[storage.Status]int)
	d := &Dashboard{TotalParcels: len(parcels)}
	for i := range parcels {
		p := &parcels[i]
		counts[p.Status]++
		if !p.CreatedAt.Before(dayStart) && !p.CreatedAt.After(dayEnd) {
			d.CreatedToday++
		}
	}

	d.Delivered = counts[storage.StatusDelivered]
	d.InTransit = counts[storage.StatusInTransit]
	d.Pending = counts[storage.StatusCreated]
	d.Failed = counts[storage.StatusFailedDelivery] + counts[storage.StatusReturned]

	for _, st := range storage.Statuses() {
		d.ByStatus = append(d.ByStatus, StatusCount{
			Status:      st,
			Description: st.Description(),
			Count:       counts[st],
		})
	}

	recent := make([]storage.Parcel, len(parcels))
	copy(recent, parcels)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentParcelsLimit {
		recent = recent[:recentParcelsLimit]
	}
	d.RecentParcels = recent

	return d
}
