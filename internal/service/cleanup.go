package service

import (
	"context"
	"log"
)

type CleanupReport struct {
	TripsDeleted       int64 `json:"trips_deleted"`
	ReservationsPurged int64 `json:"reservations_purged"`
}

// Cleaner is the retention job: past trips and abandoned checkouts.
type Cleaner struct {
	sync     *TripSynchronizer
	payments PaymentService
}

func NewCleaner(sync *TripSynchronizer, payments PaymentService) *Cleaner {
	return &Cleaner{sync: sync, payments: payments}
}

// Run deletes trips past the retention window, then abandoned reservations.
// A reservation failure is logged and does not undo the trip cleanup.
func (c *Cleaner) Run(ctx context.Context) (*CleanupReport, error) {
	report := &CleanupReport{}

	n, err := c.sync.CleanupPastTrips(ctx)
	if err != nil {
		return nil, err
	}
	report.TripsDeleted = n

	if c.payments != nil {
		purged, err := c.payments.PurgeAbandonedReservations(ctx)
		if err != nil {
			log.Printf("[Cleaner] reservation purge failed: %v", err)
		}
		report.ReservationsPurged = purged
	}
	return report, nil
}
