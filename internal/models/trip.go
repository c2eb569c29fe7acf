package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for trip and booking dates.
const DateLayout = "2006-01-02"

type Passenger struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// Passengers is stored as a JSONB array on the trip row.
type Passengers []Passenger

func (p Passengers) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *Passengers) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*p = Passengers{}
		return nil
	default:
		return errors.New("passengers: unsupported column type")
	}
	return json.Unmarshal(b, p)
}

type Trip struct {
	ID           string     `gorm:"primaryKey;type:varchar(255)" json:"id"`
	PriceRuleID  string     `gorm:"not null;uniqueIndex:idx_trip_slot,priority:1;index:idx_trip_group,priority:1" json:"price_rule_id"`
	Pickup       string     `gorm:"not null" json:"pickup"`
	Destination  string     `gorm:"not null" json:"destination"`
	VehicleType  string     `gorm:"not null" json:"vehicle_type"`
	Date         string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_trip_slot,priority:2;index:idx_trip_group,priority:2;index:idx_trip_date" json:"date"`
	VehicleIndex int        `gorm:"not null;uniqueIndex:idx_trip_slot,priority:3" json:"vehicle_index"`
	Capacity     int        `gorm:"not null" json:"capacity"`
	Passengers   Passengers `gorm:"type:jsonb;not null;default:'[]'" json:"passengers"`
	IsFull       bool       `gorm:"not null;default:false" json:"is_full"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TripID is deterministic: {priceRuleId}_{date}_{vehicleIndex}.
func TripID(priceRuleID, date string, vehicleIndex int) string {
	return fmt.Sprintf("%s_%s_%d", priceRuleID, date, vehicleIndex)
}

func NewTrip(rule *PriceRule, date string, vehicleIndex, capacity int) *Trip {
	return &Trip{
		ID:           TripID(rule.ID, date, vehicleIndex),
		PriceRuleID:  rule.ID,
		Pickup:       rule.Pickup,
		Destination:  rule.Destination,
		VehicleType:  rule.VehicleType,
		Date:         date,
		VehicleIndex: vehicleIndex,
		Capacity:     capacity,
		Passengers:   Passengers{},
	}
}

func (t *Trip) HasBooking(bookingID string) bool {
	for _, p := range t.Passengers {
		if p.BookingID == bookingID {
			return true
		}
	}
	return false
}

// AddPassenger appends p and recomputes IsFull. It returns false when the
// trip has no seat left or already carries the booking.
func (t *Trip) AddPassenger(p Passenger) bool {
	if t.HasBooking(p.BookingID) || len(t.Passengers) >= t.Capacity {
		return false
	}
	t.Passengers = append(t.Passengers, p)
	t.RefreshFull()
	return true
}

// RemoveBookings drops every passenger whose booking id is in ids and
// reports whether anything changed.
func (t *Trip) RemoveBookings(ids map[string]struct{}) bool {
	kept := make(Passengers, 0, len(t.Passengers))
	for _, p := range t.Passengers {
		if _, gone := ids[p.BookingID]; gone {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == len(t.Passengers) {
		return false
	}
	t.Passengers = kept
	t.RefreshFull()
	return true
}

func (t *Trip) RefreshFull() {
	t.IsFull = len(t.Passengers) >= t.Capacity
}

func (t *Trip) BookingIDs() []string {
	ids := make([]string, 0, len(t.Passengers))
	for _, p := range t.Passengers {
		ids = append(ids, p.BookingID)
	}
	return ids
}
