package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_db "github.com/trackme/parcels/internal/db/mocks"
	"github.com/trackme/parcels/internal/repository"
	mock_storage "github.com/trackme/parcels/internal/storage/mocks"
)

const testTopic = "parcel_status_events"

type pgFixture struct {
	db          *mock_db.MockDB
	tx          *mock_db.MockTx
	parcelRepo  *mock_storage.MockParcelRepository
	historyRepo *mock_storage.MockHistoryRepository
	outboxRepo  *mock_storage.MockOutboxTaskRepository
	storage     *PostgresStorage
}

func newPgFixture(t *testing.T) *pgFixture {
	ctrl := gomock.NewController(t)
	f := &pgFixture{
		db:          mock_db.NewMockDB(ctrl),
		tx:          mock_db.NewMockTx(ctrl),
		parcelRepo:  mock_storage.NewMockParcelRepository(ctrl),
		historyRepo: mock_storage.NewMockHistoryRepository(ctrl),
		outboxRepo:  mock_storage.NewMockOutboxTaskRepository(ctrl),
	}
	f.storage = NewPostgresStorage(f.db, f.parcelRepo, f.historyRepo, f.outboxRepo, testTopic)
	return f
}

func sampleParcel() Parcel {
	created := time.Date(2025, 3, 10, 8, 45, 22, 0, time.UTC)
	return Parcel{
		ID:               "parcel-1",
		TrackingNumber:   "TRK001234567",
		CourierServiceID: "demo-courier-service-id",
		Sender:           Party{Name: "John Doe", Email: "john@example.com", Address: "123 Sender St, Colombo"},
		Recipient:        Party{Name: "Jane Smith", Email: "jane@example.com", Address: "456 Recipient Ave, Galle"},
		Item:             Item{Description: "Electronics Package", Weight: 2.5, Category: "Electronics"},
		Status:           StatusCreated,
		StatusHistory: []HistoryEntry{{
			Status:    StatusCreated,
			Location:  "Colombo Collection Point",
			Notes:     "Parcel created",
			Timestamp: created,
			UpdatedBy: "admin@trackme.com",
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestPostgresStorage_CreateParcel(t *testing.T) {
	ctx := context.Background()

	t.Run("successful parcel creation", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.parcelRepo.EXPECT().CreateTx(ctx, f.tx, toRepoParcel(&parcel)).Return(nil)
		f.historyRepo.EXPECT().CreateTx(ctx, f.tx, toRepoHistoryEntry(parcel.ID, parcel.StatusHistory[0])).Return(nil)
		f.outboxRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, task *repository.OutboxTask) error {
				assert.Equal(t, testTopic, task.Topic)
				assert.Equal(t, parcel.TrackingNumber, task.MessageKey)

				var event repository.StatusChangedEvent
				require.NoError(t, json.Unmarshal(task.Payload, &event))
				assert.Equal(t, "", event.OldStatus)
				assert.Equal(t, "Created", event.NewStatus)
				assert.Equal(t, "jane@example.com", event.RecipientEmail)
				assert.NotEmpty(t, event.EventID)
				return nil
			})
		f.tx.EXPECT().Commit(ctx).Return(nil)

		assert.NoError(t, f.storage.CreateParcel(ctx, parcel))
	})

	t.Run("rolls back on history failure", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()
		historyErr := errors.New("history insert failed")

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.parcelRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).Return(nil)
		f.historyRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).Return(historyErr)
		f.tx.EXPECT().Rollback(ctx).Return(nil)

		err := f.storage.CreateParcel(ctx, parcel)
		assert.ErrorIs(t, err, historyErr)
		assert.Contains(t, err.Error(), "failed to add parcel history entry")
	})

	t.Run("begin failure", func(t *testing.T) {
		f := newPgFixture(t)
		f.db.EXPECT().BeginTx(ctx).Return(nil, errors.New("pool closed"))

		err := f.storage.CreateParcel(ctx, sampleParcel())
		assert.ErrorContains(t, err, "failed to begin transaction")
	})
}

func TestPostgresStorage_GetParcel(t *testing.T) {
	ctx := context.Background()

	t.Run("joins history", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()

		f.parcelRepo.EXPECT().GetByID(ctx, parcel.ID).Return(toRepoParcel(&parcel), nil)
		f.historyRepo.EXPECT().GetByParcelID(ctx, parcel.ID).
			Return([]*repository.HistoryEntry{toRepoHistoryEntry(parcel.ID, parcel.StatusHistory[0])}, nil)

		got, err := f.storage.GetParcel(ctx, parcel.ID)
		require.NoError(t, err)
		assert.Equal(t, parcel, *got)
	})

	t.Run("not found", func(t *testing.T) {
		f := newPgFixture(t)
		f.parcelRepo.EXPECT().GetByID(ctx, "missing").Return(nil, repository.ErrObjectNotFound)

		_, err := f.storage.GetParcel(ctx, "missing")
		assert.ErrorIs(t, err, ErrParcelNotFound)
	})
}

func TestPostgresStorage_ListParcels(t *testing.T) {
	ctx := context.Background()

	t.Run("groups history by parcel", func(t *testing.T) {
		f := newPgFixture(t)
		first := sampleParcel()
		second := sampleParcel()
		second.ID = "parcel-2"
		second.TrackingNumber = "TRK00000000B"

		f.parcelRepo.EXPECT().List(ctx, "demo-courier-service-id").
			Return([]*repository.Parcel{toRepoParcel(&first), toRepoParcel(&second)}, nil)
		f.historyRepo.EXPECT().GetByParcelIDs(ctx, []string{"parcel-1", "parcel-2"}).
			Return([]*repository.HistoryEntry{
				toRepoHistoryEntry("parcel-2", second.StatusHistory[0]),
				toRepoHistoryEntry("parcel-1", first.StatusHistory[0]),
			}, nil)

		parcels, err := f.storage.ListParcels(ctx, ListFilter{CourierServiceID: "demo-courier-service-id"})
		require.NoError(t, err)
		require.Len(t, parcels, 2)
		assert.Equal(t, first, parcels[0])
		assert.Equal(t, second, parcels[1])
	})

	t.Run("empty", func(t *testing.T) {
		f := newPgFixture(t)
		f.parcelRepo.EXPECT().List(ctx, "").Return(nil, nil)

		parcels, err := f.storage.ListParcels(ctx, ListFilter{})
		require.NoError(t, err)
		assert.NotNil(t, parcels)
		assert.Empty(t, parcels)
	})
}

func TestPostgresStorage_AppendStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	entry := HistoryEntry{
		Status:    StatusInTransit,
		Location:  "Colombo Sorting Center",
		Notes:     "Parcel in transit to destination",
		Timestamp: at,
		UpdatedBy: "admin@trackme.com",
	}

	t.Run("success", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.parcelRepo.EXPECT().GetByIDTx(ctx, f.tx, parcel.ID).Return(toRepoParcel(&parcel), nil)
		f.historyRepo.EXPECT().GetByParcelIDTx(ctx, f.tx, parcel.ID).Return([]*repository.HistoryEntry{
			toRepoHistoryEntry(parcel.ID, parcel.StatusHistory[0]),
		}, nil)
		f.parcelRepo.EXPECT().UpdateTx(ctx, f.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, row *repository.Parcel) error {
				assert.Equal(t, "In Transit", row.Status)
				assert.Equal(t, at, row.UpdatedAt)
				return nil
			})
		f.historyRepo.EXPECT().CreateTx(ctx, f.tx, toRepoHistoryEntry(parcel.ID, entry)).Return(nil)
		f.outboxRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, task *repository.OutboxTask) error {
				var event repository.StatusChangedEvent
				require.NoError(t, json.Unmarshal(task.Payload, &event))
				assert.Equal(t, "Created", event.OldStatus)
				assert.Equal(t, "In Transit", event.NewStatus)
				assert.Equal(t, "Colombo Sorting Center", event.Location)
				return nil
			})
		f.tx.EXPECT().Commit(ctx).Return(nil)

		got, err := f.storage.AppendStatus(ctx, parcel.ID, entry)
		require.NoError(t, err)
		assert.Equal(t, StatusInTransit, got.Status)
		assert.Len(t, got.StatusHistory, 2)
		last, _ := got.LastEntry()
		assert.Equal(t, entry, last)
	})

	t.Run("entry that waited on the lock lands after the one applied first", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()
		applied := HistoryEntry{
			Status:    StatusPickedUp,
			Location:  "Colombo Collection Point",
			Timestamp: at.Add(time.Minute),
			UpdatedBy: "courier@trackme.com",
		}
		locked := toRepoParcel(&parcel)
		locked.Status = string(StatusPickedUp)

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.parcelRepo.EXPECT().GetByIDTx(ctx, f.tx, parcel.ID).Return(locked, nil)
		f.historyRepo.EXPECT().GetByParcelIDTx(ctx, f.tx, parcel.ID).Return([]*repository.HistoryEntry{
			toRepoHistoryEntry(parcel.ID, parcel.StatusHistory[0]),
			toRepoHistoryEntry(parcel.ID, applied),
		}, nil)
		f.parcelRepo.EXPECT().UpdateTx(ctx, f.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, row *repository.Parcel) error {
				assert.Equal(t, applied.Timestamp, row.UpdatedAt)
				return nil
			})
		f.historyRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, row *repository.HistoryEntry) error {
				assert.Equal(t, applied.Timestamp, row.ChangedAt)
				return nil
			})
		f.outboxRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).Return(nil)
		f.tx.EXPECT().Commit(ctx).Return(nil)

		got, err := f.storage.AppendStatus(ctx, parcel.ID, entry)
		require.NoError(t, err)

		require.Len(t, got.StatusHistory, 3)
		last, _ := got.LastEntry()
		assert.Equal(t, got.Status, last.Status)
		assert.Equal(t, StatusInTransit, got.Status)
		for i := 1; i < len(got.StatusHistory); i++ {
			assert.False(t, got.StatusHistory[i].Timestamp.Before(got.StatusHistory[i-1].Timestamp))
		}
	})

	t.Run("missing parcel", func(t *testing.T) {
		f := newPgFixture(t)

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.parcelRepo.EXPECT().GetByIDTx(ctx, f.tx, "missing").Return(nil, repository.ErrObjectNotFound)
		f.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := f.storage.AppendStatus(ctx, "missing", entry)
		assert.ErrorIs(t, err, ErrParcelNotFound)
	})

	t.Run("commit failure", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.parcelRepo.EXPECT().GetByIDTx(ctx, f.tx, parcel.ID).Return(toRepoParcel(&parcel), nil)
		f.historyRepo.EXPECT().GetByParcelIDTx(ctx, f.tx, parcel.ID).Return(nil, nil)
		f.parcelRepo.EXPECT().UpdateTx(ctx, f.tx, gomock.Any()).Return(nil)
		f.historyRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).Return(nil)
		f.outboxRepo.EXPECT().CreateTx(ctx, f.tx, gomock.Any()).Return(nil)
		f.tx.EXPECT().Commit(ctx).Return(errors.New("serialization failure"))

		_, err := f.storage.AppendStatus(ctx, parcel.ID, entry)
		assert.ErrorContains(t, err, "failed to commit transaction")
	})
}

func TestPostgresStorage_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("update leaves status alone", func(t *testing.T) {
		f := newPgFixture(t)
		parcel := sampleParcel()
		parcel.Recipient.Address = "1 New Road, Kandy"

		f.parcelRepo.EXPECT().Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, row *repository.Parcel) error {
				assert.Empty(t, row.Status)
				assert.Equal(t, "1 New Road, Kandy", row.RecipientAddress)
				return nil
			})

		assert.NoError(t, f.storage.UpdateParcel(ctx, parcel))
	})

	t.Run("update maps not found", func(t *testing.T) {
		f := newPgFixture(t)
		f.parcelRepo.EXPECT().Update(ctx, gomock.Any()).Return(repository.ErrObjectNotFound)

		assert.ErrorIs(t, f.storage.UpdateParcel(ctx, sampleParcel()), ErrParcelNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		f := newPgFixture(t)
		f.parcelRepo.EXPECT().Delete(ctx, "parcel-1").Return(nil)

		assert.NoError(t, f.storage.DeleteParcel(ctx, "parcel-1"))
	})

	t.Run("delete wraps other errors", func(t *testing.T) {
		f := newPgFixture(t)
		dbErr := errors.New("connection reset")
		f.parcelRepo.EXPECT().Delete(ctx, "parcel-1").Return(dbErr)

		err := f.storage.DeleteParcel(ctx, "parcel-1")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrParcelNotFound)
	})
}

func TestPostgresStorage_GetStatusHistory(t *testing.T) {
	ctx := context.Background()
	f := newPgFixture(t)
	parcel := sampleParcel()

	f.parcelRepo.EXPECT().GetByID(ctx, parcel.ID).Return(toRepoParcel(&parcel), nil)
	f.historyRepo.EXPECT().GetByParcelID(ctx, parcel.ID).
		Return([]*repository.HistoryEntry{toRepoHistoryEntry(parcel.ID, parcel.StatusHistory[0])}, nil)

	history, err := f.storage.GetStatusHistory(ctx, parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusHistory, history)
}
