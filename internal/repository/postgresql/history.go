package postgresql

import (
	"context"

	"github.com/trackme/parcels/internal/db"
	"github.com/trackme/parcels/internal/repository"
	"github.com/trackme/parcels/internal/storage"
)

const historyColumns = "id, parcel_id, status, location, notes, updated_by, changed_at"

type HistoryRepo struct {
	db db.DB
}

func NewHistoryRepo(db db.DB) storage.HistoryRepository {
	return &HistoryRepo{db: db}
}

// CreateTx appends one entry. Rows are never updated or deleted individually.
func (r *HistoryRepo) CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO parcel_status_history (
            parcel_id, status, location, notes, updated_by, changed_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `, entry.ParcelID, entry.Status, entry.Location, entry.Notes, entry.UpdatedBy, entry.ChangedAt)
	return err
}

// Entries come back in insertion order. Appends happen under the parcel row lock, so the id
// sequence is the order in which statuses were applied.
const historyByParcelQuery = `
        SELECT ` + historyColumns + ` FROM parcel_status_history
        WHERE parcel_id = $1
        ORDER BY id ASC
    `

func (r *HistoryRepo) GetByParcelID(ctx context.Context, parcelID string) ([]*repository.HistoryEntry, error) {
	var entries []*repository.HistoryEntry
	err := r.db.Select(ctx, &entries, historyByParcelQuery, parcelID)
	return entries, err
}

func (r *HistoryRepo) GetByParcelIDTx(ctx context.Context, tx db.Tx, parcelID string) ([]*repository.HistoryEntry, error) {
	var entries []*repository.HistoryEntry
	err := tx.Select(ctx, &entries, historyByParcelQuery, parcelID)
	return entries, err
}

func (r *HistoryRepo) GetByParcelIDs(ctx context.Context, parcelIDs []string) ([]*repository.HistoryEntry, error) {
	var entries []*repository.HistoryEntry
	err := r.db.Select(ctx, &entries, `
        SELECT `+historyColumns+` FROM parcel_status_history
        WHERE parcel_id = ANY($1)
        ORDER BY parcel_id, id ASC
    `, parcelIDs)
	return entries, err
}
