package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/trackme/parcels/internal/db"
	"github.com/trackme/parcels/internal/repository"
)

// PostgresStorage keeps parcels in postgres. Every write that touches the status history
// also records a StatusChangedEvent in the outbox inside the same transaction.
type PostgresStorage struct {
	db          db.DB
	parcelRepo  ParcelRepository
	historyRepo HistoryRepository
	outboxRepo  OutboxTaskRepository
	topic       string
}

func NewPostgresStorage(
	database db.DB,
	parcelRepo ParcelRepository,
	historyRepo HistoryRepository,
	outboxRepo OutboxTaskRepository,
	topic string,
) *PostgresStorage {
	return &PostgresStorage{
		db:          database,
		parcelRepo:  parcelRepo,
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		topic:       topic,
	}
}

func (s *PostgresStorage) CreateParcel(ctx context.Context, parcel Parcel) error {
	row := toRepoParcel(&parcel)

	return s.inTx(ctx, func(tx db.Tx) error {
		if err := s.parcelRepo.CreateTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to add parcel: %w", err)
		}

		oldStatus := ""
		for _, entry := range parcel.StatusHistory {
			if err := s.historyRepo.CreateTx(ctx, tx, toRepoHistoryEntry(parcel.ID, entry)); err != nil {
				return fmt.Errorf("failed to add parcel history entry: %w", err)
			}
			if err := s.enqueueStatusEvent(ctx, tx, row, oldStatus, entry); err != nil {
				return err
			}
			oldStatus = string(entry.Status)
		}
		return nil
	})
}

func (s *PostgresStorage) GetParcel(ctx context.Context, id string) (*Parcel, error) {
	row, err := s.parcelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "failed to get parcel")
	}
	return s.withHistory(ctx, row)
}

func (s *PostgresStorage) GetParcelByTrackingNumber(ctx context.Context, trackingNumber string) (*Parcel, error) {
	row, err := s.parcelRepo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, mapNotFound(err, "failed to get parcel by tracking number")
	}
	return s.withHistory(ctx, row)
}

func (s *PostgresStorage) ListParcels(ctx context.Context, filter ListFilter) ([]Parcel, error) {
	rows, err := s.parcelRepo.List(ctx, filter.CourierServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	if len(rows) == 0 {
		return []Parcel{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	entries, err := s.historyRepo.GetByParcelIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel histories: %w", err)
	}

	byParcel := make(map[string][]*repository.HistoryEntry, len(rows))
	for _, e := range entries {
		byParcel[e.ParcelID] = append(byParcel[e.ParcelID], e)
	}

	parcels := make([]Parcel, len(rows))
	for i, row := range rows {
		parcels[i] = *fromRepoParcel(row, fromRepoHistory(byParcel[row.ID]))
	}
	return parcels, nil
}

func (s *PostgresStorage) UpdateParcel(ctx context.Context, parcel Parcel) error {
	row := toRepoParcel(&parcel)
	// status only changes through AppendStatus
	row.Status = ""
	if err := s.parcelRepo.Update(ctx, row); err != nil {
		return mapNotFound(err, "failed to update parcel")
	}
	return nil
}

func (s *PostgresStorage) DeleteParcel(ctx context.Context, id string) error {
	if err := s.parcelRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, "failed to delete parcel")
	}
	return nil
}

// AppendStatus locks the parcel row, appends entry and returns the parcel as of this
// transaction, so the status and the history it carries always agree.
func (s *PostgresStorage) AppendStatus(ctx context.Context, id string, entry HistoryEntry) (*Parcel, error) {
	var parcel *Parcel

	err := s.inTx(ctx, func(tx db.Tx) error {
		row, err := s.parcelRepo.GetByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "failed to lock parcel")
		}

		entries, err := s.historyRepo.GetByParcelIDTx(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to get parcel history: %w", err)
		}
		history := fromRepoHistory(entries)
		entry = after(history, entry)

		oldStatus := row.Status
		row.Status = string(entry.Status)
		row.UpdatedAt = entry.Timestamp

		if err := s.parcelRepo.UpdateTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to update parcel status: %w", err)
		}
		if err := s.historyRepo.CreateTx(ctx, tx, toRepoHistoryEntry(id, entry)); err != nil {
			return fmt.Errorf("failed to add parcel history entry: %w", err)
		}
		if err := s.enqueueStatusEvent(ctx, tx, row, oldStatus, entry); err != nil {
			return err
		}

		parcel = fromRepoParcel(row, append(history, entry))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parcel, nil
}

func (s *PostgresStorage) GetStatusHistory(ctx context.Context, id string) ([]HistoryEntry, error) {
	if _, err := s.parcelRepo.GetByID(ctx, id); err != nil {
		return nil, mapNotFound(err, "failed to get parcel")
	}

	entries, err := s.historyRepo.GetByParcelID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel history: %w", err)
	}
	return fromRepoHistory(entries), nil
}

func (s *PostgresStorage) withHistory(ctx context.Context, row *repository.Parcel) (*Parcel, error) {
	entries, err := s.historyRepo.GetByParcelID(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel history: %w", err)
	}
	return fromRepoParcel(row, fromRepoHistory(entries)), nil
}

func (s *PostgresStorage) enqueueStatusEvent(ctx context.Context, tx db.Tx, row *repository.Parcel, oldStatus string, entry HistoryEntry) error {
	payload, err := json.Marshal(repository.StatusChangedEvent{
		EventID:          uuid.NewString(),
		ParcelID:         row.ID,
		TrackingNumber:   row.TrackingNumber,
		CourierServiceID: row.CourierServiceID,
		RecipientEmail:   row.RecipientEmail,
		OldStatus:        oldStatus,
		NewStatus:        string(entry.Status),
		Location:         entry.Location,
		Notes:            entry.Notes,
		UpdatedBy:        entry.UpdatedBy,
		Timestamp:        entry.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	task := &repository.OutboxTask{
		Payload:    payload,
		Topic:      s.topic,
		MessageKey: row.TrackingNumber,
	}
	if err := s.outboxRepo.CreateTx(ctx, tx, task); err != nil {
		return fmt.Errorf("failed to enqueue status event: %w", err)
	}
	return nil
}

func (s *PostgresStorage) inTx(ctx context.Context, fn func(tx db.Tx) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrObjectNotFound) {
		return ErrParcelNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
