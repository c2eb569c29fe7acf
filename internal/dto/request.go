package dto

import (
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
)

// CreateBookingRequest has no fare field; the fare is priced server side.
type CreateBookingRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Pickup          string `json:"pickup" validate:"required"`
	Destination     string `json:"destination" validate:"required"`
	IntendedDate    string `json:"intended_date" validate:"required,date"`
	AlternativeDate string `json:"alternative_date" validate:"omitempty,date"`
	VehicleType     string `json:"vehicle_type" validate:"required"`
	LuggageCount    int    `json:"luggage_count" validate:"gte=0"`
}

func (r CreateBookingRequest) ToInput() service.CreateBookingInput {
	return service.CreateBookingInput{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Pickup:          r.Pickup,
		Destination:     r.Destination,
		IntendedDate:    r.IntendedDate,
		AlternativeDate: r.AlternativeDate,
		VehicleType:     r.VehicleType,
		LuggageCount:    r.LuggageCount,
	}
}

type UpdateStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,oneof=Pending Paid Confirmed Cancelled Refunded"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,date"`
}

type BulkDeleteRequest struct {
	Mode  string `json:"mode" validate:"required,oneof=all 7d 30d custom"`
	Start string `json:"start" validate:"omitempty,date"`
	End   string `json:"end" validate:"omitempty,date"`
}

func (r BulkDeleteRequest) ToService() service.BulkDeleteRequest {
	return service.BulkDeleteRequest{Mode: service.DeleteMode(r.Mode), Start: r.Start, End: r.End}
}

type PriceRuleRequest struct {
	Pickup          string  `json:"pickup" validate:"required"`
	Destination     string  `json:"destination" validate:"required"`
	VehicleType     string  `json:"vehicle_type" validate:"required"`
	Price           float64 `json:"price" validate:"gte=0"`
	VehicleCount    int     `json:"vehicle_count" validate:"required,gte=1"`
	SeatsPerVehicle int     `json:"seats_per_vehicle" validate:"gte=0"`
}

func (r PriceRuleRequest) ToInput() service.PriceRuleInput {
	return service.PriceRuleInput{
		Pickup:          r.Pickup,
		Destination:     r.Destination,
		VehicleType:     r.VehicleType,
		Price:           r.Price,
		VehicleCount:    r.VehicleCount,
		SeatsPerVehicle: r.SeatsPerVehicle,
	}
}

type SettingRequest struct {
	Value string `json:"value" validate:"required"`
}
