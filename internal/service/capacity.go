package service

import (
	"context"
	"errors"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"gorm.io/gorm"
)

type Capacity struct {
	Rule        *models.PriceRule
	PerVehicle  int
	MaxVehicles int
}

// Total is the number of seats the group can ever hold.
func (c *Capacity) Total() int {
	return c.PerVehicle * c.MaxVehicles
}

type CapacityResolver struct {
	rules repository.PriceRuleRepository
}

func NewCapacityResolver(rules repository.PriceRuleRepository) *CapacityResolver {
	return &CapacityResolver{rules: rules}
}

// Resolve loads and locks the price rule for the route inside tx. A missing
// rule or a zero capacity is a ConfigurationError.
func (r *CapacityResolver) Resolve(ctx context.Context, tx *gorm.DB, pickup, destination, vehicleType string) (*Capacity, error) {
	key := models.PriceRuleKey(pickup, destination, vehicleType)

	rule, err := r.rules.FindByIDForUpdate(ctx, tx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ConfigurationError{PriceRuleID: key, Reason: "price rule not found"}
	}
	if err != nil {
		return nil, err
	}
	return capacityOf(rule)
}

func capacityOf(rule *models.PriceRule) (*Capacity, error) {
	perVehicle := rule.Capacity()
	if perVehicle <= 0 {
		return nil, &ConfigurationError{PriceRuleID: rule.ID, Reason: "seats per vehicle is zero for vehicle type " + rule.VehicleType}
	}
	if rule.VehicleCount <= 0 {
		return nil, &ConfigurationError{PriceRuleID: rule.ID, Reason: "vehicle count is zero"}
	}
	return &Capacity{Rule: rule, PerVehicle: perVehicle, MaxVehicles: rule.VehicleCount}, nil
}
