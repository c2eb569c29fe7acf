package service

import (
	"context"
	"errors"
	"log"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/metrics"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"gorm.io/gorm"
)

type Allocation struct {
	BookingID       string `json:"booking_id"`
	TripID          string `json:"trip_id"`
	VehicleIndex    int    `json:"vehicle_index,omitempty"`
	CreatedTrip     bool   `json:"created_trip"`
	TripFull        bool   `json:"trip_full"`
	AlreadyAssigned bool   `json:"already_assigned"`
}

// Allocator places bookings on trips. All decisions for a route group are
// serialised by the price rule row lock taken in Resolve.
type Allocator struct {
	tx       repository.Transactor
	resolver *CapacityResolver
	trips    repository.TripRepository
	bookings repository.BookingRepository
	monitor  *ConfirmationMonitor
}

func NewAllocator(
	tx repository.Transactor,
	resolver *CapacityResolver,
	trips repository.TripRepository,
	bookings repository.BookingRepository,
	monitor *ConfirmationMonitor,
) *Allocator {
	return &Allocator{
		tx:       tx,
		resolver: resolver,
		trips:    trips,
		bookings: bookings,
		monitor:  monitor,
	}
}

func assignable(status models.BookingStatus) bool {
	switch status {
	case models.StatusPending, models.StatusPaid, models.StatusConfirmed:
		return true
	}
	return false
}

// Assign puts the booking on the first non-full trip of its group, or on a
// new trip when the fleet allows one more. A booking that already has a trip
// is left untouched.
func (a *Allocator) Assign(ctx context.Context, bookingID string) (*Allocation, error) {
	var result *Allocation

	err := a.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		result = nil

		booking, err := a.bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if booking.HasTrip() {
			result = &Allocation{BookingID: booking.ID, TripID: *booking.TripID, AlreadyAssigned: true}
			return nil
		}
		if !assignable(booking.Status) {
			return validationErr("status", "a %s booking cannot be assigned to a trip", booking.Status)
		}

		capacity, err := a.resolver.Resolve(ctx, tx, booking.Pickup, booking.Destination, booking.VehicleType)
		if err != nil {
			return err
		}

		trips, err := a.trips.FindGroupForUpdate(ctx, tx, capacity.Rule.ID, booking.IntendedDate)
		if err != nil {
			return err
		}

		alloc, err := a.place(ctx, tx, booking, capacity, trips)
		if err != nil {
			return err
		}

		if err := a.bookings.SetTrip(ctx, tx, booking.ID, &alloc.TripID); err != nil {
			return err
		}
		result = alloc
		return nil
	})

	a.record(bookingID, result, err)
	if err != nil {
		return nil, err
	}

	if result.TripFull && !result.AlreadyAssigned && a.monitor != nil {
		tripID := result.TripID
		runHooks(ctx, "Allocator", []hook{{
			name: "confirm trip " + tripID,
			fn: func(ctx context.Context) error {
				_, err := a.monitor.ConfirmTrip(ctx, tripID)
				return err
			},
		}})
	}
	return result, nil
}

func (a *Allocator) place(ctx context.Context, tx *gorm.DB, booking *models.Booking, capacity *Capacity, trips []models.Trip) (*Allocation, error) {
	// a manifest entry without the booking's back reference is reused as is
	for i := range trips {
		if trips[i].HasBooking(booking.ID) {
			return allocationFor(booking.ID, &trips[i], false), nil
		}
	}

	passenger := booking.Passenger()
	for i := range trips {
		trip := &trips[i]
		if trip.IsFull || !trip.AddPassenger(passenger) {
			continue
		}
		if err := a.trips.SaveManifest(ctx, tx, trip); err != nil {
			return nil, err
		}
		return allocationFor(booking.ID, trip, false), nil
	}

	if len(trips) >= capacity.MaxVehicles {
		return nil, &CapacityExceededError{
			PriceRuleID: capacity.Rule.ID,
			Date:        booking.IntendedDate,
			MaxVehicles: capacity.MaxVehicles,
			PerVehicle:  capacity.PerVehicle,
		}
	}

	trip := models.NewTrip(capacity.Rule, booking.IntendedDate, len(trips)+1, capacity.PerVehicle)
	trip.AddPassenger(passenger)
	if err := a.trips.Create(ctx, tx, trip); err != nil {
		return nil, err
	}
	return allocationFor(booking.ID, trip, true), nil
}

func allocationFor(bookingID string, trip *models.Trip, created bool) *Allocation {
	return &Allocation{
		BookingID:    bookingID,
		TripID:       trip.ID,
		VehicleIndex: trip.VehicleIndex,
		CreatedTrip:  created,
		TripFull:     trip.IsFull,
	}
}

func (a *Allocator) record(bookingID string, result *Allocation, err error) {
	switch {
	case err == nil && result.AlreadyAssigned:
		metrics.Allocations.WithLabelValues(metrics.OutcomeAlreadyAssigned).Inc()
	case err == nil && result.CreatedTrip:
		metrics.Allocations.WithLabelValues(metrics.OutcomeCreatedTrip).Inc()
		log.Printf("[Allocator] booking %s -> new trip %s", bookingID, result.TripID)
	case err == nil:
		metrics.Allocations.WithLabelValues(metrics.OutcomeAssigned).Inc()
		log.Printf("[Allocator] booking %s -> trip %s (full=%t)", bookingID, result.TripID, result.TripFull)
	case IsCapacityExceeded(err):
		metrics.Allocations.WithLabelValues(metrics.OutcomeCapacityExceeded).Inc()
		log.Printf("[Allocator] booking %s not assigned: %v", bookingID, err)
	case IsConfigurationError(err):
		metrics.Allocations.WithLabelValues(metrics.OutcomeConfigurationError).Inc()
		log.Printf("[Allocator] booking %s not assigned: %v", bookingID, err)
	default:
		metrics.Allocations.WithLabelValues(metrics.OutcomeError).Inc()
	}
}
