package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/trackme/parcels/internal/metrics"
	"github.com/trackme/parcels/internal/storage"
)

type ParcelLister interface {
	ListParcels(ctx context.Context, filter storage.ListFilter) ([]storage.Parcel, error)
}

// ParcelCache serves public tracking lookups. It holds parcels that are still moving,
// keyed by tracking number; terminal parcels are evicted and read from storage.
type ParcelCache struct {
	mu     sync.RWMutex
	cache  map[string]*storage.Parcel
	repo   ParcelLister
	logger *zap.Logger
}

func NewParcelCache(repo ParcelLister, logger *zap.Logger) *ParcelCache {
	return &ParcelCache{
		cache:  make(map[string]*storage.Parcel),
		repo:   repo,
		logger: logger,
	}
}

func (c *ParcelCache) LoadInitialData(ctx context.Context) error {
	c.logger.Info("Loading active parcels into tracking cache")
	parcels, err := c.repo.ListParcels(ctx, storage.ListFilter{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range parcels {
		if parcels[i].Status.IsTerminal() {
			continue
		}
		c.cache[parcels[i].TrackingNumber] = parcels[i].Clone()
	}
	metrics.TrackingCacheItems.Set(float64(len(c.cache)))
	c.logger.Info("Tracking cache loaded", zap.Int("parcels", len(c.cache)))
	return nil
}

func (c *ParcelCache) Get(trackingNumber string) (*storage.Parcel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	parcel, found := c.cache[trackingNumber]
	if !found {
		return nil, false
	}
	return parcel.Clone(), true
}

// Set stores a copy of parcel, or evicts it once it reaches a terminal status.
// A parcel with a shorter history than the cached one is an older snapshot and is ignored.
func (c *ParcelCache) Set(parcel *storage.Parcel) {
	if parcel.Status.IsTerminal() {
		c.Delete(parcel.TrackingNumber)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.cache[parcel.TrackingNumber]; ok && len(current.StatusHistory) > len(parcel.StatusHistory) {
		return
	}
	c.cache[parcel.TrackingNumber] = parcel.Clone()
	metrics.TrackingCacheItems.Set(float64(len(c.cache)))
	c.logger.Debug("Cache: set parcel",
		zap.String("tracking_number", parcel.TrackingNumber),
		zap.String("status", string(parcel.Status)))
}

func (c *ParcelCache) Delete(trackingNumber string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[trackingNumber]; found {
		delete(c.cache, trackingNumber)
		metrics.TrackingCacheItems.Set(float64(len(c.cache)))
		c.logger.Debug("Cache: deleted parcel", zap.String("tracking_number", trackingNumber))
	}
}

func (c *ParcelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
