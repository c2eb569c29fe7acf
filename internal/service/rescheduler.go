package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/metrics"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"gorm.io/gorm"
)

type RescheduleReport struct {
	FromDate     string   `json:"from_date"`
	ToDate       string   `json:"to_date"`
	TripsScanned int      `json:"trips_scanned"`
	Rescheduled  int      `json:"rescheduled"`
	Reassigned   int      `json:"reassigned"`
	Skipped      int      `json:"skipped"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *RescheduleReport) fail(format string, args ...any) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type ResyncReport struct {
	OrphanTrips int      `json:"orphan_trips"`
	Scanned     int      `json:"scanned"`
	Assigned    int      `json:"assigned"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
}

// Rescheduler moves passengers of yesterday's underfilled trips to today and
// re-runs allocation for bookings that never got a trip.
type Rescheduler struct {
	tx        repository.Transactor
	trips     repository.TripRepository
	bookings  repository.BookingRepository
	allocator *Allocator
	sync      *TripSynchronizer
	alerts    *AlertService
	sender    notification.Sender
	opts      Options
}

func NewRescheduler(
	tx repository.Transactor,
	trips repository.TripRepository,
	bookings repository.BookingRepository,
	allocator *Allocator,
	sync *TripSynchronizer,
	alerts *AlertService,
	sender notification.Sender,
	opts Options,
) *Rescheduler {
	return &Rescheduler{
		tx:        tx,
		trips:     trips,
		bookings:  bookings,
		allocator: allocator,
		sync:      sync,
		alerts:    alerts,
		sender:    sender,
		opts:      opts.withDefaults(),
	}
}

var errNotOnTrip = errors.New("booking no longer on trip")

// RunDaily processes every passenger of every non-full trip dated yesterday.
// Passengers are handled independently and the old trips stay in place.
func (r *Rescheduler) RunDaily(ctx context.Context) (*RescheduleReport, error) {
	report := &RescheduleReport{
		FromDate: r.opts.daysFromToday(-1),
		ToDate:   r.opts.today(),
	}

	notFull := false
	trips, err := r.trips.Find(ctx, repository.TripFilter{Date: report.FromDate, IsFull: &notFull})
	if err != nil {
		return nil, err
	}
	report.TripsScanned = len(trips)

	for _, trip := range trips {
		for _, p := range trip.Passengers {
			r.reschedulePassenger(ctx, report, trip.ID, p.BookingID)
		}
	}

	log.Printf("[Rescheduler] %s -> %s: trips=%d rescheduled=%d reassigned=%d skipped=%d failed=%d",
		report.FromDate, report.ToDate, report.TripsScanned, report.Rescheduled, report.Reassigned, report.Skipped, report.Failed)
	return report, nil
}

func (r *Rescheduler) reschedulePassenger(ctx context.Context, report *RescheduleReport, tripID, bookingID string) {
	err := r.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		b, err := r.bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		// only bookings still pointing at this trip move; this makes re-runs no-ops
		if b.TripID == nil || *b.TripID != tripID || !assignable(b.Status) {
			return errNotOnTrip
		}
		return r.bookings.Updates(ctx, tx, b.ID, rescheduleFields(b, report.ToDate))
	})
	switch {
	case errors.Is(err, errNotOnTrip):
		report.Skipped++
		metrics.Reschedules.WithLabelValues("skipped").Inc()
		return
	case err != nil:
		report.fail("booking %s: %v", bookingID, err)
		metrics.Reschedules.WithLabelValues("failed").Inc()
		return
	}
	report.Rescheduled++

	if _, err := r.allocator.Assign(ctx, bookingID); err != nil {
		report.fail("booking %s rescheduled but not reassigned: %v", bookingID, err)
		metrics.Reschedules.WithLabelValues("unassigned").Inc()
		if IsAllocationFailure(err) {
			r.raiseAlert(ctx, bookingID, err)
		}
	} else {
		report.Reassigned++
		metrics.Reschedules.WithLabelValues("reassigned").Inc()
	}

	b, err := r.bookings.FindByID(ctx, bookingID)
	if err != nil {
		log.Printf("[Rescheduler] reload booking %s for notification: %v", bookingID, err)
		return
	}
	runHooks(ctx, "Rescheduler", []hook{notifyHook(r.sender, notification.ForBooking(notification.KindRescheduled, b))})
}

func (r *Rescheduler) raiseAlert(ctx context.Context, bookingID string, cause error) {
	if r.alerts == nil {
		return
	}
	if _, err := r.alerts.RaiseForAllocation(ctx, bookingID, cause); err != nil {
		log.Printf("[Rescheduler] failed to raise alert for booking %s: %v", bookingID, err)
	}
}

// Resync first drops manifest entries of deleted bookings, then allocates
// every active booking from today onwards that has no trip.
func (r *Rescheduler) Resync(ctx context.Context) (*ResyncReport, error) {
	report := &ResyncReport{}
	if r.sync != nil {
		n, err := r.sync.SweepOrphans(ctx)
		if err != nil {
			return nil, fmt.Errorf("sweep orphaned passengers: %w", err)
		}
		report.OrphanTrips = n
	}

	statuses := []models.BookingStatus{models.StatusPending, models.StatusPaid, models.StatusConfirmed}
	pending, err := r.bookings.FindUnassigned(ctx, statuses, r.opts.today())
	if err != nil {
		return nil, err
	}

	report.Scanned = len(pending)
	for _, b := range pending {
		if _, err := r.allocator.Assign(ctx, b.ID); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("booking %s: %v", b.ID, err))
			if IsAllocationFailure(err) {
				r.raiseAlert(ctx, b.ID, err)
			}
			continue
		}
		report.Assigned++
		if r.alerts != nil {
			r.alerts.ResolveForBooking(ctx, b.ID)
		}
	}

	log.Printf("[Rescheduler] resync: orphan_trips=%d scanned=%d assigned=%d failed=%d", report.OrphanTrips, report.Scanned, report.Assigned, report.Failed)
	return report, nil
}
