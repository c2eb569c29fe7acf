package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusPaid      BookingStatus = "Paid"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCancelled BookingStatus = "Cancelled"
	StatusRefunded  BookingStatus = "Refunded"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusPaid:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
	StatusCancelled: {StatusRefunded},
}

// CanTransition reports whether the status graph allows from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type Booking struct {
	ID               string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name             string        `gorm:"not null" json:"name"`
	Email            string        `gorm:"not null" json:"email"`
	Phone            string        `gorm:"not null" json:"phone"`
	Pickup           string        `gorm:"not null" json:"pickup"`
	Destination      string        `gorm:"not null" json:"destination"`
	IntendedDate     string        `gorm:"type:varchar(10);not null;index" json:"intended_date"`
	AlternativeDate  string        `gorm:"type:varchar(10)" json:"alternative_date,omitempty"`
	VehicleType      string        `gorm:"not null" json:"vehicle_type"`
	LuggageCount     int           `gorm:"not null;default:0" json:"luggage_count"`
	TotalFare        float64       `gorm:"not null;default:0" json:"total_fare"`
	Status           BookingStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	ConfirmedDate    *string       `gorm:"type:varchar(10)" json:"confirmed_date,omitempty"`
	PaymentReference *string       `gorm:"uniqueIndex:idx_booking_payment_ref,where:payment_reference IS NOT NULL" json:"payment_reference,omitempty"`
	PaymentProvider  string        `gorm:"type:varchar(20)" json:"payment_provider,omitempty"`
	TripID           *string       `gorm:"index" json:"trip_id,omitempty"`
	RescheduledCount int           `gorm:"not null;default:0" json:"rescheduled_count"`
	CreatedAt        time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (b *Booking) Passenger() Passenger {
	return Passenger{BookingID: b.ID, Name: b.Name, Phone: b.Phone}
}

func (b *Booking) HasTrip() bool {
	return b.TripID != nil && *b.TripID != ""
}
