package tracking

import (
	"context"
	"sort"
	"strings"

	"github.com/trackme/parcels/internal/storage"
)

type SortKey string

const (
	SortByCreatedAt      SortKey = "createdAt"
	SortByStatus         SortKey = "status"
	SortByTrackingNumber SortKey = "trackingNumber"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StatusAll disables the status filter.
const StatusAll = "all"

type Query struct {
	Scope  string
	Text   string
	Status string
	SortBy SortKey
	Order  SortOrder
}

type QueryResult struct {
	Items         []storage.Parcel `json:"items"`
	TotalCount    int              `json:"totalCount"`
	FilteredCount int              `json:"filteredCount"`
}

func (q Query) normalize() (Query, error) {
	q.Text = strings.TrimSpace(q.Text)

	switch q.SortBy {
	case "":
		q.SortBy = SortByCreatedAt
	case SortByCreatedAt, SortByStatus, SortByTrackingNumber:
	default:
		return q, &storage.ValidationError{Field: "sortBy", Reason: "unknown sort key " + string(q.SortBy)}
	}

	switch q.Order {
	case "":
		q.Order = SortDesc
	case SortAsc, SortDesc:
	default:
		return q, &storage.ValidationError{Field: "sortOrder", Reason: "must be asc or desc"}
	}

	if q.Status == "" {
		q.Status = StatusAll
	}
	if q.Status != StatusAll {
		if _, err := storage.ParseStatus(q.Status); err != nil {
			return q, err
		}
	}
	return q, nil
}

// ListParcels returns the parcels of q.Scope after the text filter, the status filter
// and a stable sort, in that order.
func (s *Service) ListParcels(ctx context.Context, q Query) (*QueryResult, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}

	parcels, err := s.storage.ListParcels(ctx, storage.ListFilter{CourierServiceID: q.Scope})
	if err != nil {
		return nil, err
	}

	result := applyQuery(parcels, q)
	return &result, nil
}

func applyQuery(parcels []storage.Parcel, q Query) QueryResult {
	items := make([]storage.Parcel, 0, len(parcels))
	needle := strings.ToLower(q.Text)
	for _, p := range parcels {
		if needle != "" && !matchesText(&p, needle) {
			continue
		}
		if q.Status != StatusAll && string(p.Status) != q.Status {
			continue
		}
		items = append(items, p)
	}

	less := lessFunc(q.SortBy)
	sort.SliceStable(items, func(i, j int) bool {
		if q.Order == SortDesc {
			return less(&items[j], &items[i])
		}
		return less(&items[i], &items[j])
	})

	return QueryResult{
		Items:         items,
		TotalCount:    len(parcels),
		FilteredCount: len(items),
	}
}

func matchesText(p *storage.Parcel, needle string) bool {
	return strings.Contains(strings.ToLower(p.TrackingNumber), needle) ||
		strings.Contains(strings.ToLower(p.Sender.Name), needle) ||
		strings.Contains(strings.ToLower(p.Recipient.Name), needle)
}

func lessFunc(key SortKey) func(a, b *storage.Parcel) bool {
	switch key {
	case SortByStatus:
		return func(a, b *storage.Parcel) bool { return a.Status < b.Status }
	case SortByTrackingNumber:
		return func(a, b *storage.Parcel) bool { return a.TrackingNumber < b.TrackingNumber }
	default:
		return func(a, b *storage.Parcel) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
