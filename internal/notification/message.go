package notification

import (
	"fmt"
	"strconv"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
)

type Kind string

const (
	KindStatusConfirmed  Kind = "status-confirmed"
	KindStatusCancelled  Kind = "status-cancelled"
	KindBookingReceived  Kind = "booking-received"
	KindRescheduled      Kind = "rescheduled"
	KindRefundRequest    Kind = "refund-request"
	KindCapacityOverflow Kind = "capacity-overflow-alert"
)

func (k Kind) Valid() bool {
	switch k {
	case KindStatusConfirmed, KindStatusCancelled, KindBookingReceived,
		KindRescheduled, KindRefundRequest, KindCapacityOverflow:
		return true
	}
	return false
}

// RoutingKey is the topic the message is published under.
func (k Kind) RoutingKey() string {
	return "notification." + string(k)
}

type Message struct {
	Kind      Kind              `json:"kind"`
	To        string            `json:"to"`
	BookingID string            `json:"booking_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func bookingData(b *models.Booking) map[string]string {
	data := map[string]string{
		"name":         b.Name,
		"email":        b.Email,
		"phone":        b.Phone,
		"pickup":       b.Pickup,
		"destination":  b.Destination,
		"vehicle_type": b.VehicleType,
		"date":         b.IntendedDate,
		"status":       string(b.Status),
		"total_fare":   strconv.FormatFloat(b.TotalFare, 'f', 2, 64),
		"booking_id":   b.ID,
	}
	if b.ConfirmedDate != nil {
		data["confirmed_date"] = *b.ConfirmedDate
	}
	if b.PaymentReference != nil {
		data["payment_reference"] = *b.PaymentReference
	}
	if b.TripID != nil {
		data["trip_id"] = *b.TripID
	}
	return data
}

// ForBooking builds a customer-facing message of kind about b.
func ForBooking(kind Kind, b *models.Booking) Message {
	return Message{Kind: kind, To: b.Email, BookingID: b.ID, Data: bookingData(b)}
}

func RefundRequest(opsEmail string, b *models.Booking) Message {
	return Message{Kind: KindRefundRequest, To: opsEmail, BookingID: b.ID, Data: bookingData(b)}
}

func CapacityOverflow(opsEmail, bookingID, reason string) Message {
	return Message{
		Kind:      KindCapacityOverflow,
		To:        opsEmail,
		BookingID: bookingID,
		Data:      map[string]string{"booking_id": bookingID, "reason": reason},
	}
}

func (m Message) Validate() error {
	if !m.Kind.Valid() {
		return fmt.Errorf("unknown notification kind %q", m.Kind)
	}
	if m.To == "" {
		return fmt.Errorf("notification %s has no recipient", m.Kind)
	}
	return nil
}
