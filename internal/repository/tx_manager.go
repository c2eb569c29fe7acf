package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const maxTxAttempts = 5

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction runs fn in a transaction and transparently retries it
// when postgres aborts it with a serialization failure or a deadlock.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = t.db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		log.Printf("[Tx] conflict on attempt %d/%d, retrying: %v", attempt, maxTxAttempts, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

// IsRetryable reports serialization_failure (40001) and deadlock_detected (40P01).
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// IsUniqueViolation reports unique_violation (23505).
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// DefaultBatchSize is the per-batch write ceiling for bulk operations.
const DefaultBatchSize = 500

// execBatches splits ids into chunks of size and runs op for each chunk
// concurrently. There is no atomicity across chunks.
func execBatches(ctx context.Context, db *gorm.DB, ids []string, size int, op func(db *gorm.DB, batch []string) *gorm.DB) (int64, error) {
	batches := chunk(ids, size)
	affected := make([]int64, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			res := op(db.WithContext(gctx), batch)
			affected[i] = res.RowsAffected
			return res.Error
		})
	}
	err := g.Wait()

	var total int64
	for _, n := range affected {
		total += n
	}
	return total, err
}
