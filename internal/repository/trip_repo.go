package repository

import (
	"context"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TripFilter struct {
	Date        string
	PriceRuleID string
	IsFull      *bool
}

type TripRepository interface {
	FindGroupForUpdate(ctx context.Context, tx *gorm.DB, priceRuleID, date string) ([]models.Trip, error)
	Create(ctx context.Context, tx *gorm.DB, trip *models.Trip) error
	SaveManifest(ctx context.Context, tx *gorm.DB, trip *models.Trip) error
	FindByID(ctx context.Context, id string) (*models.Trip, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Trip, error)
	Find(ctx context.Context, filter TripFilter) ([]models.Trip, error)
	RemovePassengers(ctx context.Context, tripIDs []string, bookingIDs map[string]struct{}) (int, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteBefore(ctx context.Context, date string) (int64, error)
}

type tripRepository struct {
	db        *gorm.DB
	tx        Transactor
	batchSize int
}

func NewTripRepository(db *gorm.DB, batchSize int) TripRepository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &tripRepository{db: db, tx: NewTransactor(db), batchSize: batchSize}
}

// FindGroupForUpdate returns the trips of one route/date ordered by
// vehicle index, locking them for the rest of the transaction.
func (r *tripRepository) FindGroupForUpdate(ctx context.Context, tx *gorm.DB, priceRuleID, date string) ([]models.Trip, error) {
	var trips []models.Trip
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("price_rule_id = ? AND date = ?", priceRuleID, date).
		Order("vehicle_index ASC").
		Find(&trips).Error
	return trips, err
}

func (r *tripRepository) Create(ctx context.Context, tx *gorm.DB, trip *models.Trip) error {
	return tx.WithContext(ctx).Create(trip).Error
}

func (r *tripRepository) SaveManifest(ctx context.Context, tx *gorm.DB, trip *models.Trip) error {
	return tx.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ?", trip.ID).
		Updates(map[string]any{
			"passengers": trip.Passengers,
			"is_full":    trip.IsFull,
		}).Error
}

func (r *tripRepository) FindByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Trip, error) {
	var trip models.Trip
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) Find(ctx context.Context, filter TripFilter) ([]models.Trip, error) {
	var trips []models.Trip
	q := r.db.WithContext(ctx)
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.PriceRuleID != "" {
		q = q.Where("price_rule_id = ?", filter.PriceRuleID)
	}
	if filter.IsFull != nil {
		q = q.Where("is_full = ?", *filter.IsFull)
	}
	if err := q.Order("date ASC, price_rule_id ASC, vehicle_index ASC").Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

// RemovePassengers strips bookingIDs from the given trips. Trips are
// processed in batches committed concurrently; each batch re-reads its rows
// under lock in the allocator's order (route, then vehicle index) and is
// retried on serialization failures. Only changed rows are written.
func (r *tripRepository) RemovePassengers(ctx context.Context, tripIDs []string, bookingIDs map[string]struct{}) (int, error) {
	batches := chunk(tripIDs, r.batchSize)
	updated := make([]int, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			return r.tx.WithinTransaction(gctx, func(tx *gorm.DB) error {
				updated[i] = 0
				var trips []models.Trip
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("id IN ?", batch).
					Order("date ASC, price_rule_id ASC, vehicle_index ASC").
					Find(&trips).Error; err != nil {
					return err
				}
				for j := range trips {
					if !trips[j].RemoveBookings(bookingIDs) {
						continue
					}
					if err := r.SaveManifest(gctx, tx, &trips[j]); err != nil {
						return err
					}
					updated[i]++
				}
				return nil
			})
		})
	}
	err := g.Wait()

	total := 0
	for _, n := range updated {
		total += n
	}
	return total, err
}

func (r *tripRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	return execBatches(ctx, r.db, ids, r.batchSize, func(db *gorm.DB, batch []string) *gorm.DB {
		return db.Where("id IN ?", batch).Delete(&models.Trip{})
	})
}

func (r *tripRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	res := r.db.WithContext(ctx).Where("date < ?", date).Delete(&models.Trip{})
	return res.RowsAffected, res.Error
}
