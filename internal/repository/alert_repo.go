package repository

import (
	"context"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"gorm.io/gorm"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	FindOpen(ctx context.Context, kind models.AlertKind, bookingID string) (*models.Alert, error)
	Find(ctx context.Context, resolved *bool) ([]models.Alert, error)
	Resolve(ctx context.Context, id string, at time.Time) error
	ResolveForBooking(ctx context.Context, bookingID string, at time.Time) (int64, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) FindOpen(ctx context.Context, kind models.AlertKind, bookingID string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).
		Where("kind = ? AND booking_id = ? AND resolved = ?", kind, bookingID, false).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) Find(ctx context.Context, resolved *bool) ([]models.Alert, error) {
	var alerts []models.Alert
	q := r.db.WithContext(ctx)
	if resolved != nil {
		q = q.Where("resolved = ?", *resolved)
	}
	if err := q.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) Resolve(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{"resolved": true, "resolved_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResolveForBooking closes every open alert raised for bookingID.
func (r *alertRepository) ResolveForBooking(ctx context.Context, bookingID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("booking_id = ? AND resolved = ?", bookingID, false).
		Updates(map[string]any{"resolved": true, "resolved_at": at})
	return res.RowsAffected, res.Error
}
