package service

import (
	"context"
	"log"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
)

type ResetResult struct {
	TripsDeleted    int64 `json:"trips_deleted"`
	BookingsCleared int64 `json:"bookings_cleared"`
}

// TripSynchronizer keeps trip manifests free of bookings that no longer
// exist or were cancelled.
type TripSynchronizer struct {
	trips    repository.TripRepository
	bookings repository.BookingRepository
	opts     Options
}

func NewTripSynchronizer(trips repository.TripRepository, bookings repository.BookingRepository, opts Options) *TripSynchronizer {
	return &TripSynchronizer{trips: trips, bookings: bookings, opts: opts.withDefaults()}
}

// Reconcile removes the given booking ids from every trip that lists them
// and returns how many trips were rewritten. Trips that do not reference any
// of the ids are not written.
func (s *TripSynchronizer) Reconcile(ctx context.Context, bookingIDs []string) (int, error) {
	if len(bookingIDs) == 0 {
		return 0, nil
	}
	removed := make(map[string]struct{}, len(bookingIDs))
	for _, id := range bookingIDs {
		removed[id] = struct{}{}
	}

	trips, err := s.trips.Find(ctx, repository.TripFilter{})
	if err != nil {
		return 0, err
	}

	var affected []string
	for _, trip := range trips {
		for _, id := range trip.BookingIDs() {
			if _, ok := removed[id]; ok {
				affected = append(affected, trip.ID)
				break
			}
		}
	}
	if len(affected) == 0 {
		return 0, nil
	}

	updated, err := s.trips.RemovePassengers(ctx, affected, removed)
	log.Printf("[TripSync] removed %d bookings from %d/%d trips", len(bookingIDs), updated, len(affected))
	return updated, err
}

// SweepOrphans removes manifest entries whose booking row is gone, which
// happens when a booking delete committed but its reconcile did not. It
// returns how many trips were rewritten.
func (s *TripSynchronizer) SweepOrphans(ctx context.Context) (int, error) {
	trips, err := s.trips.Find(ctx, repository.TripFilter{})
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	var listed []string
	for _, trip := range trips {
		for _, id := range trip.BookingIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			listed = append(listed, id)
		}
	}
	if len(listed) == 0 {
		return 0, nil
	}

	existing, err := s.bookings.FindExistingIDs(ctx, listed)
	if err != nil {
		return 0, err
	}
	var orphans []string
	for _, id := range listed {
		if _, ok := existing[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	log.Printf("[TripSync] %d manifest entries point at deleted bookings", len(orphans))
	return s.Reconcile(ctx, orphans)
}

// ClearAll deletes every trip and drops the trip reference from every
// booking that any trip listed.
func (s *TripSynchronizer) ClearAll(ctx context.Context) (*ResetResult, error) {
	trips, err := s.trips.Find(ctx, repository.TripFilter{})
	if err != nil {
		return nil, err
	}

	tripIDs := make([]string, 0, len(trips))
	seen := make(map[string]struct{})
	var bookingIDs []string
	for _, trip := range trips {
		tripIDs = append(tripIDs, trip.ID)
		for _, id := range trip.BookingIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			bookingIDs = append(bookingIDs, id)
		}
	}

	result := &ResetResult{}
	result.TripsDeleted, err = s.trips.DeleteByIDs(ctx, tripIDs)
	if err != nil {
		return result, err
	}
	result.BookingsCleared, err = s.bookings.ClearTripIDs(ctx, bookingIDs)
	if err != nil {
		return result, err
	}

	log.Printf("[TripSync] hard reset: %d trips deleted, %d bookings cleared", result.TripsDeleted, result.BookingsCleared)
	return result, nil
}

// CleanupPastTrips deletes trips dated more than RetentionDays ago. Bookings
// are left alone.
func (s *TripSynchronizer) CleanupPastTrips(ctx context.Context) (int64, error) {
	cutoff := s.opts.daysFromToday(-s.opts.RetentionDays)
	n, err := s.trips.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	log.Printf("[TripSync] deleted %d trips dated before %s", n, cutoff)
	return n, nil
}
