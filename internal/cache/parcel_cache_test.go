package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackme/parcels/internal/storage"
)

type listerFunc func(ctx context.Context, filter storage.ListFilter) ([]storage.Parcel, error)

func (f listerFunc) ListParcels(ctx context.Context, filter storage.ListFilter) ([]storage.Parcel, error) {
	return f(ctx, filter)
}

func parcel(tn string, status storage.Status, historyLen int) storage.Parcel {
	p := storage.Parcel{ID: "id-" + tn, TrackingNumber: tn, Status: status}
	for i := 0; i < historyLen; i++ {
		p.StatusHistory = append(p.StatusHistory, storage.HistoryEntry{
			Status:    status,
			Timestamp: time.Date(2025, 1, 1, i, 0, 0, 0, time.UTC),
		})
	}
	return p
}

func TestParcelCache_LoadInitialData(t *testing.T) {
	repo := listerFunc(func(_ context.Context, filter storage.ListFilter) ([]storage.Parcel, error) {
		assert.Empty(t, filter.CourierServiceID)
		return []storage.Parcel{
			parcel("TRK1", storage.StatusInTransit, 2),
			parcel("TRK2", storage.StatusDelivered, 5),
			parcel("TRK3", storage.StatusCreated, 1),
			parcel("TRK4", storage.StatusReturned, 3),
		}, nil
	})

	c := NewParcelCache(repo, zap.NewNop())
	require.NoError(t, c.LoadInitialData(context.Background()))
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("TRK2")
	assert.False(t, ok)
	got, ok := c.Get("TRK1")
	require.True(t, ok)
	assert.Equal(t, storage.StatusInTransit, got.Status)
}

func TestParcelCache_LoadInitialDataError(t *testing.T) {
	repo := listerFunc(func(context.Context, storage.ListFilter) ([]storage.Parcel, error) {
		return nil, errors.New("db down")
	})
	c := NewParcelCache(repo, zap.NewNop())
	assert.Error(t, c.LoadInitialData(context.Background()))
	assert.Zero(t, c.Len())
}

func TestParcelCache_SetGetDelete(t *testing.T) {
	c := NewParcelCache(nil, zap.NewNop())

	p := parcel("TRK1", storage.StatusCreated, 1)
	c.Set(&p)

	got, ok := c.Get("TRK1")
	require.True(t, ok)
	got.StatusHistory[0].Location = "mutated"
	again, _ := c.Get("TRK1")
	assert.Empty(t, again.StatusHistory[0].Location)

	t.Run("stale snapshot ignored", func(t *testing.T) {
		newer := parcel("TRK1", storage.StatusInTransit, 3)
		c.Set(&newer)
		older := parcel("TRK1", storage.StatusPickedUp, 2)
		c.Set(&older)

		got, _ := c.Get("TRK1")
		assert.Equal(t, storage.StatusInTransit, got.Status)
	})

	t.Run("terminal evicts", func(t *testing.T) {
		delivered := parcel("TRK1", storage.StatusDelivered, 4)
		c.Set(&delivered)
		_, ok := c.Get("TRK1")
		assert.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		p := parcel("TRK2", storage.StatusCreated, 1)
		c.Set(&p)
		c.Delete("TRK2")
		c.Delete("TRK2")
		assert.Zero(t, c.Len())
	})
}
