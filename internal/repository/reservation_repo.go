package repository

import (
	"context"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	Save(ctx context.Context, reservation *models.Reservation) error
	FindByReference(ctx context.Context, reference string) (*models.Reservation, error)
	Delete(ctx context.Context, reference string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Save(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "payload", "amount"}),
	}).Create(reservation).Error
}

func (r *reservationRepository) FindByReference(ctx context.Context, reference string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) Delete(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).Where("reference = ?", reference).Delete(&models.Reservation{}).Error
}

// DeleteOlderThan drops reservations abandoned before cutoff.
func (r *reservationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Reservation{})
	return res.RowsAffected, res.Error
}
