package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// PriceRule is the per-route fare and fleet configuration. Its ID is the
// normalized route key, see PriceRuleKey.
type PriceRule struct {
	ID              string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Pickup          string    `gorm:"not null" json:"pickup"`
	Destination     string    `gorm:"not null" json:"destination"`
	VehicleType     string    `gorm:"not null" json:"vehicle_type"`
	Price           float64   `gorm:"not null" json:"price"`
	VehicleCount    int       `gorm:"not null;default:1" json:"vehicle_count"`
	SeatsPerVehicle int       `gorm:"not null;default:0" json:"seats_per_vehicle"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (PriceRule) TableName() string { return "prices" }

var vehicleSeats = map[string]int{
	"4-seater":  4,
	"5-seater":  5,
	"6-seater":  6,
	"7-seater":  7,
	"sienna":    7,
	"hiace":     14,
	"bus":       14,
	"coaster":   30,
	"sedan":     4,
	"minivan":   7,
	"18-seater": 18,
}

// PriceRuleKey builds the lower-kebab key "pickup_destination_vehicletype".
func PriceRuleKey(pickup, destination, vehicleType string) string {
	return slug.Make(pickup) + "_" + slug.Make(destination) + "_" + slug.Make(vehicleType)
}

// Capacity returns the seats available in one vehicle of this rule, or 0
// when it cannot be derived.
func (p *PriceRule) Capacity() int {
	if p.SeatsPerVehicle > 0 {
		return p.SeatsPerVehicle
	}
	return SeatsForVehicleType(p.VehicleType)
}

func SeatsForVehicleType(vehicleType string) int {
	key := slug.Make(vehicleType)
	if seats, ok := vehicleSeats[key]; ok {
		return seats
	}
	// "<n>-seater" and friends
	head, _, found := strings.Cut(key, "-")
	if !found {
		return 0
	}
	n, err := strconv.Atoi(head)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
