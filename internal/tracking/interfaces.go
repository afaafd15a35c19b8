//go:generate mockgen -source ./interfaces.go -destination=./mocks/interfaces.go -package=mock_tracking
package tracking

import (
	"context"

	"github.com/trackme/parcels/internal/storage"
)

// Storage is the parcel record store. storage.MemoryStorage and storage.PostgresStorage implement it.
type Storage interface {
	CreateParcel(ctx context.Context, parcel storage.Parcel) error
	GetParcel(ctx context.Context, id string) (*storage.Parcel, error)
	GetParcelByTrackingNumber(ctx context.Context, trackingNumber string) (*storage.Parcel, error)
	ListParcels(ctx context.Context, filter storage.ListFilter) ([]storage.Parcel, error)
	UpdateParcel(ctx context.Context, parcel storage.Parcel) error
	DeleteParcel(ctx context.Context, id string) error
	AppendStatus(ctx context.Context, id string, entry storage.HistoryEntry) (*storage.Parcel, error)
	GetStatusHistory(ctx context.Context, id string) ([]storage.HistoryEntry, error)
}

type Cache interface {
	Get(trackingNumber string) (*storage.Parcel, bool)
	Set(parcel *storage.Parcel)
	Delete(trackingNumber string)
}
