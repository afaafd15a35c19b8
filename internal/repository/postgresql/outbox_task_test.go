package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "github.com/trackme/parcels/internal/db/mocks"
	"github.com/trackme/parcels/internal/repository"
)

func TestOutboxTaskRepo_CreateTx(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := NewOutboxTaskRepo()

		task := &repository.OutboxTask{
			Payload:    json.RawMessage(`{"newStatus":"Created"}`),
			Topic:      "parcel_status_events",
			MessageKey: "TRK001234567",
		}

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(),
				gomock.Any(),
				gomock.Eq(repository.TaskStatusCreated),
				gomock.Eq(task.Payload),
				gomock.Eq("parcel_status_events"),
				gomock.Eq("TRK001234567"),
				gomock.Any(),
				gomock.Any()).
			Return(pgconn.CommandTag("INSERT 0 1"), nil)

		require.NoError(t, repo.CreateTx(ctx, mockTx, task))
		assert.NotEqual(t, uuid.Nil, task.ID)
	})

	t.Run("wraps error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := NewOutboxTaskRepo()

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("boom"))

		err := repo.CreateTx(ctx, mockTx, &repository.OutboxTask{})
		assert.ErrorContains(t, err, "failed to insert outbox task")
	})
}

func TestOutboxTaskRepo_GetProcessableTasksTx(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := NewOutboxTaskRepo()
	staleBefore := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expected := []*repository.OutboxTask{
		{ID: uuid.New(), Status: repository.TaskStatusCreated},
		{ID: uuid.New(), Status: repository.TaskStatusProcessing, UpdatedAt: staleBefore.Add(-time.Minute)},
	}

	mockTx.EXPECT().
		Select(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq(repository.TaskStatusCreated),
			gomock.Eq(repository.TaskStatusFailed),
			gomock.Eq(5),
			gomock.Eq(repository.TaskStatusProcessing),
			gomock.Eq(staleBefore),
			gomock.Eq(10)).
		DoAndReturn(func(_ context.Context, dest any, query string, _ ...any) error {
			assert.Contains(t, query, "FOR UPDATE SKIP LOCKED")
			assert.Contains(t, query, "status = $4 AND updated_at < $5")
			*dest.(*[]*repository.OutboxTask) = expected
			return nil
		})

	tasks, err := repo.GetProcessableTasksTx(context.Background(), mockTx, 10, 5, staleBefore)
	require.NoError(t, err)
	assert.Equal(t, expected, tasks)
}

func TestOutboxTaskRepo_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	done := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("db", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_database.NewMockDB(ctrl)
		repo := NewOutboxTaskRepo()

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(), id, repository.TaskStatusDone, 1, gomock.Nil(), &done).
			Return(pgconn.CommandTag("UPDATE 1"), nil)

		assert.NoError(t, repo.UpdateTaskStatus(ctx, mockDB, id, repository.TaskStatusDone, 1, nil, &done))
	})

	t.Run("tx missing row", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := NewOutboxTaskRepo()

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(), id, repository.TaskStatusProcessing, 0, gomock.Nil(), gomock.Nil()).
			Return(pgconn.CommandTag("UPDATE 0"), nil)

		err := repo.UpdateTaskStatusTx(ctx, mockTx, id, repository.TaskStatusProcessing, 0, nil, nil)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}
