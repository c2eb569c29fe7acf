package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"gorm.io/gorm"
)

type PriceRuleInput struct {
	Pickup          string  `json:"pickup"`
	Destination     string  `json:"destination"`
	VehicleType     string  `json:"vehicle_type"`
	Price           float64 `json:"price"`
	VehicleCount    int     `json:"vehicle_count"`
	SeatsPerVehicle int     `json:"seats_per_vehicle"`
}

type PriceRuleService interface {
	SaveRule(ctx context.Context, in PriceRuleInput) (*models.PriceRule, error)
	GetRule(ctx context.Context, id string) (*models.PriceRule, error)
	ListRules(ctx context.Context) ([]models.PriceRule, error)
	DeleteRule(ctx context.Context, id string) error
}

type priceRuleService struct {
	repo repository.PriceRuleRepository
}

func NewPriceRuleService(repo repository.PriceRuleRepository) PriceRuleService {
	return &priceRuleService{repo: repo}
}

// SaveRule creates the rule for the route or replaces the existing one.
func (s *priceRuleService) SaveRule(ctx context.Context, in PriceRuleInput) (*models.PriceRule, error) {
	in.Pickup = strings.TrimSpace(in.Pickup)
	in.Destination = strings.TrimSpace(in.Destination)
	in.VehicleType = strings.TrimSpace(in.VehicleType)

	switch {
	case in.Pickup == "":
		return nil, validationErr("pickup", "is required")
	case in.Destination == "":
		return nil, validationErr("destination", "is required")
	case in.VehicleType == "":
		return nil, validationErr("vehicle_type", "is required")
	case in.Price < 0:
		return nil, validationErr("price", "must not be negative")
	case in.VehicleCount < 1:
		return nil, validationErr("vehicle_count", "must be at least 1")
	case in.SeatsPerVehicle < 0:
		return nil, validationErr("seats_per_vehicle", "must not be negative")
	}

	rule := &models.PriceRule{
		ID:              models.PriceRuleKey(in.Pickup, in.Destination, in.VehicleType),
		Pickup:          in.Pickup,
		Destination:     in.Destination,
		VehicleType:     in.VehicleType,
		Price:           in.Price,
		VehicleCount:    in.VehicleCount,
		SeatsPerVehicle: in.SeatsPerVehicle,
	}
	if rule.Capacity() == 0 {
		return nil, validationErr("seats_per_vehicle", "is required for vehicle type %q", in.VehicleType)
	}

	if err := s.repo.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *priceRuleService) GetRule(ctx context.Context, id string) (*models.PriceRule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPriceRuleNotFound
	}
	return rule, err
}

func (s *priceRuleService) ListRules(ctx context.Context) ([]models.PriceRule, error) {
	return s.repo.FindAll(ctx)
}

func (s *priceRuleService) DeleteRule(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPriceRuleNotFound
	}
	return err
}
