package models

import "time"

// Reservation holds the serialized pending booking between payment
// initialization and verification. Reference is the gateway reference.
type Reservation struct {
	Reference string    `gorm:"primaryKey;type:varchar(255)" json:"reference"`
	Provider  string    `gorm:"type:varchar(20);not null" json:"provider"`
	Payload   string    `gorm:"type:jsonb;not null" json:"payload"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type AlertKind string

const (
	AlertCapacityExceeded AlertKind = "capacity_exceeded"
	AlertConfiguration    AlertKind = "configuration_error"
)

type Alert struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Kind       AlertKind  `gorm:"type:varchar(40);not null;index:idx_alert_open,priority:1" json:"kind"`
	BookingID  string     `gorm:"type:varchar(64);index:idx_alert_open,priority:2" json:"booking_id"`
	Message    string     `json:"message"`
	Resolved   bool       `gorm:"not null;default:false;index:idx_alert_open,priority:3" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
