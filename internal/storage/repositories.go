//go:generate mockgen -source ./repositories.go -destination=./mocks/repositories.go -package=mock_storage
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trackme/parcels/internal/db"
	"github.com/trackme/parcels/internal/repository"
)

type ParcelRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, parcel *repository.Parcel) error
	GetByID(ctx context.Context, id string) (*repository.Parcel, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Parcel, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*repository.Parcel, error)
	List(ctx context.Context, courierServiceID string) ([]*repository.Parcel, error)
	Update(ctx context.Context, parcel *repository.Parcel) error
	UpdateTx(ctx context.Context, tx db.Tx, parcel *repository.Parcel) error
	Delete(ctx context.Context, id string) error
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByParcelID(ctx context.Context, parcelID string) ([]*repository.HistoryEntry, error)
	GetByParcelIDTx(ctx context.Context, tx db.Tx, parcelID string) ([]*repository.HistoryEntry, error)
	GetByParcelIDs(ctx context.Context, parcelIDs []string) ([]*repository.HistoryEntry, error)
}

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
	GetProcessableTasksTx(ctx context.Context, tx db.Tx, limit, maxAttempts int, staleBefore time.Time) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, conn db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}
