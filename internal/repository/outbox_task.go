package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	MessageKey  string          `db:"message_key"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// StatusChangedEvent is the outbox payload written for every history append,
// including the entry seeded on creation (OldStatus is empty then).
type StatusChangedEvent struct {
	EventID          string    `json:"eventId"`
	ParcelID         string    `json:"parcelId"`
	TrackingNumber   string    `json:"trackingNumber"`
	CourierServiceID string    `json:"courierServiceId"`
	RecipientEmail   string    `json:"recipientEmail,omitempty"`
	OldStatus        string    `json:"oldStatus,omitempty"`
	NewStatus        string    `json:"newStatus"`
	Location         string    `json:"location"`
	Notes            string    `json:"notes,omitempty"`
	UpdatedBy        string    `json:"updatedBy"`
	Timestamp        time.Time `json:"timestamp"`
}
