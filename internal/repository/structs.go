package repository

import (
	"errors"
	"time"
)

var (
	ErrObjectNotFound     = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Parcel struct {
	ID               string `db:"id"`
	TrackingNumber   string `db:"tracking_number"`
	CourierServiceID string `db:"courier_service_id"`

	SenderName    string `db:"sender_name"`
	SenderEmail   string `db:"sender_email"`
	SenderPhone   string `db:"sender_phone"`
	SenderAddress string `db:"sender_address"`

	RecipientName    string `db:"recipient_name"`
	RecipientEmail   string `db:"recipient_email"`
	RecipientPhone   string `db:"recipient_phone"`
	RecipientAddress string `db:"recipient_address"`

	ItemDescription string  `db:"item_description"`
	ItemWeight      float64 `db:"item_weight"`
	ItemLength      float64 `db:"item_length"`
	ItemWidth       float64 `db:"item_width"`
	ItemHeight      float64 `db:"item_height"`
	ItemCategory    string  `db:"item_category"`

	Status            string     `db:"status"`
	EstimatedDelivery *time.Time `db:"estimated_delivery"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

type HistoryEntry struct {
	ID        int64     `db:"id"`
	ParcelID  string    `db:"parcel_id"`
	Status    string    `db:"status"`
	Location  string    `db:"location"`
	Notes     string    `db:"notes"`
	UpdatedBy string    `db:"updated_by"`
	ChangedAt time.Time `db:"changed_at"`
}

const (
	RoleAdmin   = "admin"
	RoleCourier = "courier"
)

type User struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	Name             string     `db:"name"`
	PasswordHash     string     `db:"password_hash"`
	Role             string     `db:"role"`
	CourierServiceID string     `db:"courier_service_id"`
	CreatedAt        time.Time  `db:"created_at"`
	LastLogin        *time.Time `db:"last_login"`
}
