package repository

import (
	"context"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceRuleRepository interface {
	Upsert(ctx context.Context, rule *models.PriceRule) error
	FindByID(ctx context.Context, id string) (*models.PriceRule, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.PriceRule, error)
	FindAll(ctx context.Context) ([]models.PriceRule, error)
	Delete(ctx context.Context, id string) error
}

type priceRuleRepository struct {
	db *gorm.DB
}

func NewPriceRuleRepository(db *gorm.DB) PriceRuleRepository {
	return &priceRuleRepository{db: db}
}

func (r *priceRuleRepository) Upsert(ctx context.Context, rule *models.PriceRule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pickup", "destination", "vehicle_type", "price", "vehicle_count", "seats_per_vehicle", "updated_at"}),
	}).Create(rule).Error
}

func (r *priceRuleRepository) FindByID(ctx context.Context, id string) (*models.PriceRule, error) {
	var rule models.PriceRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindByIDForUpdate locks the price rule row, which serialises every
// allocation for the route within the given transaction.
func (r *priceRuleRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.PriceRule, error) {
	var rule models.PriceRule
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *priceRuleRepository) FindAll(ctx context.Context) ([]models.PriceRule, error) {
	var rules []models.PriceRule
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *priceRuleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PriceRule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
