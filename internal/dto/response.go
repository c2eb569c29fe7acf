package dto

import (
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
)

type BookingResponse struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	Phone            string               `json:"phone"`
	Pickup           string               `json:"pickup"`
	Destination      string               `json:"destination"`
	VehicleType      string               `json:"vehicle_type"`
	IntendedDate     string               `json:"intended_date"`
	AlternativeDate  string               `json:"alternative_date,omitempty"`
	LuggageCount     int                  `json:"luggage_count"`
	TotalFare        float64              `json:"total_fare"`
	Status           models.BookingStatus `json:"status"`
	ConfirmedDate    *string              `json:"confirmed_date,omitempty"`
	PaymentReference *string              `json:"payment_reference,omitempty"`
	TripID           *string              `json:"trip_id,omitempty"`
	RescheduledCount int                  `json:"rescheduled_count"`
	CreatedAt        time.Time            `json:"created_at"`
}

type TripResponse struct {
	ID           string             `json:"id"`
	PriceRuleID  string             `json:"price_rule_id"`
	Pickup       string             `json:"pickup"`
	Destination  string             `json:"destination"`
	VehicleType  string             `json:"vehicle_type"`
	Date         string             `json:"date"`
	VehicleIndex int                `json:"vehicle_index"`
	Capacity     int                `json:"capacity"`
	Passengers   []models.Passenger `json:"passengers"`
	SeatsLeft    int                `json:"seats_left"`
	IsFull       bool               `json:"is_full"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		Name:             b.Name,
		Email:            b.Email,
		Phone:            b.Phone,
		Pickup:           b.Pickup,
		Destination:      b.Destination,
		VehicleType:      b.VehicleType,
		IntendedDate:     b.IntendedDate,
		AlternativeDate:  b.AlternativeDate,
		LuggageCount:     b.LuggageCount,
		TotalFare:        b.TotalFare,
		Status:           b.Status,
		ConfirmedDate:    b.ConfirmedDate,
		PaymentReference: b.PaymentReference,
		TripID:           b.TripID,
		RescheduledCount: b.RescheduledCount,
		CreatedAt:        b.CreatedAt,
	}
}

func ToBookingResponses(bookings []models.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = ToBookingResponse(&bookings[i])
	}
	return resp
}

func ToTripResponse(t *models.Trip) TripResponse {
	passengers := t.Passengers
	if passengers == nil {
		passengers = models.Passengers{}
	}
	left := t.Capacity - len(passengers)
	if left < 0 {
		left = 0
	}
	return TripResponse{
		ID:           t.ID,
		PriceRuleID:  t.PriceRuleID,
		Pickup:       t.Pickup,
		Destination:  t.Destination,
		VehicleType:  t.VehicleType,
		Date:         t.Date,
		VehicleIndex: t.VehicleIndex,
		Capacity:     t.Capacity,
		Passengers:   passengers,
		SeatsLeft:    left,
		IsFull:       t.IsFull,
	}
}
