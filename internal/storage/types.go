package storage

import "time"

type Parcel struct {
	ID                string         `json:"id"`
	TrackingNumber    string         `json:"trackingNumber"`
	CourierServiceID  string         `json:"courierServiceId"`
	Sender            Party          `json:"sender"`
	Recipient         Party          `json:"recipient"`
	Item              Item           `json:"item"`
	Status            Status         `json:"status"`
	StatusHistory     []HistoryEntry `json:"statusHistory"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type Party struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Item struct {
	Description string     `json:"description"`
	Weight      float64    `json:"weight"`
	Dimensions  Dimensions `json:"dimensions"`
	Category    string     `json:"category"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type HistoryEntry struct {
	Status    Status    `json:"status"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
}

// ListFilter scopes a listing. An empty CourierServiceID matches every parcel.
type ListFilter struct {
	CourierServiceID string
}

func (f ListFilter) Match(p *Parcel) bool {
	return f.CourierServiceID == "" || f.CourierServiceID == p.CourierServiceID
}

// Clone returns a copy that shares no mutable state with p.
func (p *Parcel) Clone() *Parcel {
	c := *p
	if p.StatusHistory != nil {
		c.StatusHistory = make([]HistoryEntry, len(p.StatusHistory))
		copy(c.StatusHistory, p.StatusHistory)
	}
	if p.EstimatedDelivery != nil {
		t := *p.EstimatedDelivery
		c.EstimatedDelivery = &t
	}
	return &c
}

// LastEntry returns the most recent history entry.
func (p *Parcel) LastEntry() (HistoryEntry, bool) {
	if len(p.StatusHistory) == 0 {
		return HistoryEntry{}, false
	}
	return p.StatusHistory[len(p.StatusHistory)-1], true
}

// after must be called with the parcel locked. An entry stamped before the last applied one
// (its clock was read before it reached the lock) takes the last entry's timestamp.
func after(history []HistoryEntry, entry HistoryEntry) HistoryEntry {
	if n := len(history); n > 0 && entry.Timestamp.Before(history[n-1].Timestamp) {
		entry.Timestamp = history[n-1].Timestamp
	}
	return entry
}
