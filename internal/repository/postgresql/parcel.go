package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/trackme/parcels/internal/db"
	"github.com/trackme/parcels/internal/repository"
	"github.com/trackme/parcels/internal/storage"
)

const parcelColumns = `id, tracking_number, courier_service_id,
	sender_name, sender_email, sender_phone, sender_address,
	recipient_name, recipient_email, recipient_phone, recipient_address,
	item_description, item_weight, item_length, item_width, item_height, item_category,
	status, estimated_delivery, created_at, updated_at`

type execer interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

type getter interface {
	Get(ctx context.Context, dest any, query string, args ...any) error
}

type ParcelRepo struct {
	db db.DB
}

func NewParcelRepo(db db.DB) storage.ParcelRepository {
	return &ParcelRepo{db: db}
}

func (r *ParcelRepo) CreateTx(ctx context.Context, tx db.Tx, parcel *repository.Parcel) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO parcels (`+parcelColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
    `, insertArgs(parcel)...)
	return err
}

func (r *ParcelRepo) GetByID(ctx context.Context, id string) (*repository.Parcel, error) {
	return getParcel(ctx, r.db, "SELECT "+parcelColumns+" FROM parcels WHERE id = $1", id)
}

func (r *ParcelRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Parcel, error) {
	return getParcel(ctx, tx, "SELECT "+parcelColumns+" FROM parcels WHERE id = $1 FOR UPDATE", id)
}

func (r *ParcelRepo) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*repository.Parcel, error) {
	return getParcel(ctx, r.db, "SELECT "+parcelColumns+" FROM parcels WHERE tracking_number = $1", trackingNumber)
}

func (r *ParcelRepo) List(ctx context.Context, courierServiceID string) ([]*repository.Parcel, error) {
	query := "SELECT " + parcelColumns + " FROM parcels"
	var args []any

	if courierServiceID != "" {
		query += " WHERE courier_service_id = $1"
		args = append(args, courierServiceID)
	}

	query += " ORDER BY created_at ASC, id ASC"

	var parcels []*repository.Parcel
	err := r.db.Select(ctx, &parcels, query, args...)
	return parcels, err
}

func (r *ParcelRepo) Update(ctx context.Context, parcel *repository.Parcel) error {
	return updateParcel(ctx, r.db, parcel)
}

func (r *ParcelRepo) UpdateTx(ctx context.Context, tx db.Tx, parcel *repository.Parcel) error {
	return updateParcel(ctx, tx, parcel)
}

// Delete removes the parcel; its history goes with it through ON DELETE CASCADE.
func (r *ParcelRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM parcels WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func getParcel(ctx context.Context, q getter, query string, args ...any) (*repository.Parcel, error) {
	var parcel repository.Parcel
	if err := q.Get(ctx, &parcel, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &parcel, nil
}

// updateParcel rewrites the mutable columns. An empty Status leaves the stored status untouched.
func updateParcel(ctx context.Context, e execer, parcel *repository.Parcel) error {
	tag, err := e.Exec(ctx, `
        UPDATE parcels
        SET
            sender_name = $2,
            sender_email = $3,
            sender_phone = $4,
            sender_address = $5,
            recipient_name = $6,
            recipient_email = $7,
            recipient_phone = $8,
            recipient_address = $9,
            item_description = $10,
            item_weight = $11,
            item_length = $12,
            item_width = $13,
            item_height = $14,
            item_category = $15,
            status = COALESCE(NULLIF($16, ''), status),
            estimated_delivery = $17,
            updated_at = $18
        WHERE id = $1
    `, updateArgs(parcel)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func insertArgs(p *repository.Parcel) []any {
	return []any{
		p.ID, p.TrackingNumber, p.CourierServiceID,
		p.SenderName, p.SenderEmail, p.SenderPhone, p.SenderAddress,
		p.RecipientName, p.RecipientEmail, p.RecipientPhone, p.RecipientAddress,
		p.ItemDescription, p.ItemWeight, p.ItemLength, p.ItemWidth, p.ItemHeight, p.ItemCategory,
		p.Status, p.EstimatedDelivery, p.CreatedAt, p.UpdatedAt,
	}
}

func updateArgs(p *repository.Parcel) []any {
	return []any{
		p.ID,
		p.SenderName, p.SenderEmail, p.SenderPhone, p.SenderAddress,
		p.RecipientName, p.RecipientEmail, p.RecipientPhone, p.RecipientAddress,
		p.ItemDescription, p.ItemWeight, p.ItemLength, p.ItemWidth, p.ItemHeight, p.ItemCategory,
		p.Status, p.EstimatedDelivery, p.UpdatedAt,
	}
}
