package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingFilter struct {
	Status *models.BookingStatus
	Date   string
	TripID string
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error)
	FindByPaymentReference(ctx context.Context, reference string) (*models.Booking, error)
	Find(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	FindUnassigned(ctx context.Context, statuses []models.BookingStatus, fromDate string) ([]models.Booking, error)
	FindIDsCreatedBetween(ctx context.Context, from, to *time.Time) ([]string, error)
	SetTrip(ctx context.Context, tx *gorm.DB, bookingID string, tripID *string) error
	Updates(ctx context.Context, tx *gorm.DB, bookingID string, fields map[string]any) error
	ConfirmPromotable(ctx context.Context, tx *gorm.DB, ids []string, promotable []models.BookingStatus, confirmedDate string) ([]models.Booking, error)
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	ClearTripIDs(ctx context.Context, ids []string) (int64, error)
	FindExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}

type bookingRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewBookingRepository(db *gorm.DB, batchSize int) BookingRepository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &bookingRepository{db: db, batchSize: batchSize}
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByPaymentReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Find(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("intended_date = ?", filter.Date)
	}
	if filter.TripID != "" {
		q = q.Where("trip_id = ?", filter.TripID)
	}
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindUnassigned returns bookings in one of statuses that have no trip and
// travel on or after fromDate, oldest first.
func (r *bookingRepository) FindUnassigned(ctx context.Context, statuses []models.BookingStatus, fromDate string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status IN ? AND (trip_id IS NULL OR trip_id = '') AND intended_date >= ?", statuses, fromDate).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) FindIDsCreatedBetween(ctx context.Context, from, to *time.Time) ([]string, error) {
	var ids []string
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	err := q.Pluck("id", &ids).Error
	return ids, err
}

func (r *bookingRepository) SetTrip(ctx context.Context, tx *gorm.DB, bookingID string, tripID *string) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("trip_id", tripID).Error
}

func (r *bookingRepository) Updates(ctx context.Context, tx *gorm.DB, bookingID string, fields map[string]any) error {
	res := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConfirmPromotable locks the given bookings, keeps the ones whose status is
// in promotable, and marks them Confirmed. It returns the promoted rows.
func (r *bookingRepository) ConfirmPromotable(ctx context.Context, tx *gorm.DB, ids []string, promotable []models.BookingStatus, confirmedDate string) ([]models.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var bookings []models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND status IN ?", ids, promotable).
		Order("id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	promoted := make([]string, 0, len(bookings))
	for i := range bookings {
		promoted = append(promoted, bookings[i].ID)
		bookings[i].Status = models.StatusConfirmed
		bookings[i].ConfirmedDate = &confirmedDate
	}

	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id IN ?", promoted).
		Updates(map[string]any{
			"status":         models.StatusConfirmed,
			"confirmed_date": confirmedDate,
		}).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookingRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	return execBatches(ctx, r.db, ids, r.batchSize, func(db *gorm.DB, batch []string) *gorm.DB {
		return db.Where("id IN ?", batch).Delete(&models.Booking{})
	})
}

// ClearTripIDs removes the trip reference from the given bookings without
// touching anything else on them.
func (r *bookingRepository) ClearTripIDs(ctx context.Context, ids []string) (int64, error) {
	return execBatches(ctx, r.db, ids, r.batchSize, func(db *gorm.DB, batch []string) *gorm.DB {
		return db.Model(&models.Booking{}).Where("id IN ?", batch).Update("trip_id", nil)
	})
}

// FindExistingIDs returns the subset of ids that still have a booking row.
func (r *bookingRepository) FindExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, batch := range chunk(ids, r.batchSize) {
		g.Go(func() error {
			var found []string
			if err := r.db.WithContext(gctx).
				Model(&models.Booking{}).
				Where("id IN ?", batch).
				Pluck("id", &found).Error; err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range found {
				existing[id] = struct{}{}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return existing, nil
}
