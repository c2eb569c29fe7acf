package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	Phone            string               `json:"phone"`
	Pickup           string               `json:"pickup"`
	Destination      string               `json:"destination"`
	IntendedDate     string               `json:"intended_date"`
	AlternativeDate  string               `json:"alternative_date,omitempty"`
	VehicleType      string               `json:"vehicle_type"`
	LuggageCount     int                  `json:"luggage_count"`
	TotalFare        float64              `json:"total_fare"`
	Status           models.BookingStatus `json:"status,omitempty"`
	PaymentReference string               `json:"payment_reference,omitempty"`
	PaymentProvider  string               `json:"payment_provider,omitempty"`
}

func (in *CreateBookingInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Pickup = strings.TrimSpace(in.Pickup)
	in.Destination = strings.TrimSpace(in.Destination)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	if in.Status == "" {
		in.Status = models.StatusPending
	}
}

func (in *CreateBookingInput) Validate() error {
	in.normalize()
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"pickup", in.Pickup},
		{"destination", in.Destination},
		{"vehicle_type", in.VehicleType},
	}
	for _, r := range required {
		if r.value == "" {
			return validationErr(r.field, "is required")
		}
	}
	if err := parseDate("intended_date", in.IntendedDate); err != nil {
		return err
	}
	if in.AlternativeDate != "" {
		if err := parseDate("alternative_date", in.AlternativeDate); err != nil {
			return err
		}
	}
	if in.LuggageCount < 0 {
		return validationErr("luggage_count", "must not be negative")
	}
	switch in.Status {
	case models.StatusPending:
	case models.StatusPaid:
		if in.PaymentReference == "" {
			return validationErr("payment_reference", "is required for a paid booking")
		}
	default:
		return validationErr("status", "new bookings must be Pending or Paid")
	}
	return nil
}

func (in *CreateBookingInput) toModel(id string) *models.Booking {
	b := &models.Booking{
		ID:              id,
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Pickup:          in.Pickup,
		Destination:     in.Destination,
		IntendedDate:    in.IntendedDate,
		AlternativeDate: in.AlternativeDate,
		VehicleType:     in.VehicleType,
		LuggageCount:    in.LuggageCount,
		TotalFare:       in.TotalFare,
		Status:          in.Status,
		PaymentProvider: in.PaymentProvider,
	}
	if in.PaymentReference != "" {
		ref := in.PaymentReference
		b.PaymentReference = &ref
	}
	return b
}

type DeleteMode string

const (
	DeleteAll      DeleteMode = "all"
	DeleteOlder7d  DeleteMode = "7d"
	DeleteOlder30d DeleteMode = "30d"
	DeleteCustom   DeleteMode = "custom"
)

type BulkDeleteRequest struct {
	Mode  DeleteMode
	Start string
	End   string
}

type BulkDeleteResult struct {
	Deleted      int64 `json:"deleted"`
	TripsUpdated int   `json:"trips_updated"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	DeleteBookings(ctx context.Context, req BulkDeleteRequest) (*BulkDeleteResult, error)
	RequestRefund(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id, newDate string) (*models.Booking, error)
}

type bookingService struct {
	tx        repository.Transactor
	bookings  repository.BookingRepository
	trips     repository.TripRepository
	rules     repository.PriceRuleRepository
	allocator *Allocator
	sync      *TripSynchronizer
	alerts    *AlertService
	sender    notification.Sender
	opts      Options
}

func NewBookingService(
	tx repository.Transactor,
	bookings repository.BookingRepository,
	trips repository.TripRepository,
	rules repository.PriceRuleRepository,
	allocator *Allocator,
	sync *TripSynchronizer,
	alerts *AlertService,
	sender notification.Sender,
	opts Options,
) BookingService {
	return &bookingService{
		tx:        tx,
		bookings:  bookings,
		trips:     trips,
		rules:     rules,
		allocator: allocator,
		sync:      sync,
		alerts:    alerts,
		sender:    sender,
		opts:      opts.withDefaults(),
	}
}

// CreateBooking stores the booking and assigns it to a trip before
// returning. A full fleet leaves the booking without a trip and raises an
// alert. A missing price rule raises an alert and aborts a Pending booking
// but never a Paid one.
func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	booking := in.toModel(uuid.NewString())
	// The fare always comes from the route's price rule. Without one only a
	// paid booking keeps the amount its gateway verified.
	key := models.PriceRuleKey(booking.Pickup, booking.Destination, booking.VehicleType)
	if rule, err := s.rules.FindByID(ctx, key); err == nil {
		booking.TotalFare = rule.Price
	} else if booking.Status != models.StatusPaid {
		booking.TotalFare = 0
	}

	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return s.bookings.Create(ctx, tx, booking)
	})
	if err != nil {
		if booking.PaymentReference != nil && repository.IsUniqueViolation(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	_, err = s.allocator.Assign(ctx, booking.ID)
	switch {
	case err == nil:
	case IsCapacityExceeded(err), IsConfigurationError(err) && booking.Status == models.StatusPaid:
		s.raiseAlert(ctx, booking.ID, err)
	case booking.Status == models.StatusPending:
		// the booking is dropped but the route still needs a price rule
		if IsConfigurationError(err) {
			s.raiseAlert(ctx, booking.ID, err)
		}
		if derr := s.bookings.Delete(ctx, booking.ID); derr != nil {
			log.Printf("[BookingService] failed to roll back booking %s: %v", booking.ID, derr)
		}
		return nil, err
	default:
		log.Printf("[BookingService] paid booking %s kept without trip: %v", booking.ID, err)
		return nil, err
	}

	if current, err := s.bookings.FindByID(ctx, booking.ID); err == nil {
		booking = current
	}

	runHooks(ctx, "BookingService", []hook{
		notifyHook(s.sender, notification.ForBooking(notification.KindBookingReceived, booking)),
	})
	return booking, nil
}

func (s *bookingService) raiseAlert(ctx context.Context, bookingID string, cause error) {
	if s.alerts == nil {
		return
	}
	if _, err := s.alerts.RaiseForAllocation(ctx, bookingID, cause); err != nil {
		log.Printf("[BookingService] failed to raise alert for booking %s: %v", bookingID, err)
	}
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *bookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	return s.bookings.Find(ctx, filter)
}

// UpdateStatus moves the booking along the status graph. Cancelling also
// takes the passenger off their trip in the same transaction.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, validationErr("status", "unknown status %q", status)
	}

	var updated *models.Booking
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		b, err := s.lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !models.CanTransition(b.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
		}

		fields := map[string]any{"status": status}
		switch status {
		case models.StatusRefunded:
			if b.PaymentReference == nil {
				return validationErr("status", "only bookings with a payment reference can be refunded")
			}
		case models.StatusConfirmed:
			date := b.IntendedDate
			fields["confirmed_date"] = date
			b.ConfirmedDate = &date
		case models.StatusCancelled:
			if b.HasTrip() {
				if err := s.detachFromTrip(ctx, tx, b); err != nil {
					return err
				}
				fields["trip_id"] = nil
			}
		}

		if err := s.bookings.Updates(ctx, tx, b.ID, fields); err != nil {
			return err
		}
		b.Status = status
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BookingService] booking %s -> %s", updated.ID, status)

	switch status {
	case models.StatusConfirmed:
		runHooks(ctx, "BookingService", []hook{notifyHook(s.sender, notification.ForBooking(notification.KindStatusConfirmed, updated))})
	case models.StatusCancelled:
		runHooks(ctx, "BookingService", []hook{notifyHook(s.sender, notification.ForBooking(notification.KindStatusCancelled, updated))})
	}
	return updated, nil
}

func (s *bookingService) lockBooking(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error) {
	b, err := s.bookings.FindByIDForUpdate(ctx, tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// detachFromTrip removes b from its trip's manifest. A trip that is already
// gone is ignored.
func (s *bookingService) detachFromTrip(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	trip, err := s.trips.FindByIDForUpdate(ctx, tx, *b.TripID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.TripID = nil
		return nil
	}
	if err != nil {
		return err
	}
	if trip.RemoveBookings(map[string]struct{}{b.ID: {}}) {
		if err := s.trips.SaveManifest(ctx, tx, trip); err != nil {
			return err
		}
	}
	b.TripID = nil
	return nil
}

// DeleteBooking removes the booking and strips it from every trip. A retry
// after a failed reconcile finds the row gone but still cleans the trips it
// left behind, and succeeds if there was anything to clean.
func (s *bookingService) DeleteBooking(ctx context.Context, id string) error {
	err := s.bookings.Delete(ctx, id)
	notFound := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !notFound {
		return err
	}

	updated, err := s.sync.Reconcile(ctx, []string{id})
	if err != nil {
		if notFound {
			return err
		}
		return fmt.Errorf("booking %s deleted, trip reconcile failed: %w", id, err)
	}
	if notFound && updated == 0 {
		return ErrBookingNotFound
	}
	if s.alerts != nil {
		s.alerts.ResolveForBooking(ctx, id)
	}
	return nil
}

func (s *bookingService) deleteWindow(req BulkDeleteRequest) (from, to *time.Time, err error) {
	now := s.opts.now()
	switch req.Mode {
	case DeleteAll:
		return nil, nil, nil
	case DeleteOlder7d:
		t := now.AddDate(0, 0, -7)
		return nil, &t, nil
	case DeleteOlder30d:
		t := now.AddDate(0, 0, -30)
		return nil, &t, nil
	case DeleteCustom:
		if req.Start == "" || req.End == "" {
			return nil, nil, validationErr("mode", "start and end dates are required for a custom range")
		}
		start, err := time.ParseInLocation(models.DateLayout, req.Start, s.opts.Location)
		if err != nil {
			return nil, nil, validationErr("start", "must be a date in YYYY-MM-DD format")
		}
		end, err := time.ParseInLocation(models.DateLayout, req.End, s.opts.Location)
		if err != nil {
			return nil, nil, validationErr("end", "must be a date in YYYY-MM-DD format")
		}
		if end.Before(start) {
			return nil, nil, validationErr("end", "must not be before start")
		}
		// the end day is inclusive
		end = end.AddDate(0, 0, 1)
		return &start, &end, nil
	}
	return nil, nil, validationErr("mode", "must be one of all, 7d, 30d, custom")
}

// DeleteBookings removes the bookings created inside the requested window
// and then strips them from every trip.
func (s *bookingService) DeleteBookings(ctx context.Context, req BulkDeleteRequest) (*BulkDeleteResult, error) {
	from, to, err := s.deleteWindow(req)
	if err != nil {
		return nil, err
	}

	ids, err := s.bookings.FindIDsCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &BulkDeleteResult{}, nil
	}

	result := &BulkDeleteResult{}
	result.Deleted, err = s.bookings.DeleteByIDs(ctx, ids)
	if err != nil {
		return result, err
	}
	result.TripsUpdated, err = s.sync.Reconcile(ctx, ids)
	if err != nil {
		return result, err
	}

	log.Printf("[BookingService] bulk delete (%s): %d bookings, %d trips updated", req.Mode, result.Deleted, result.TripsUpdated)
	return result, nil
}

// RequestRefund asks operations to refund a cancelled, paid booking. The
// status is not changed.
func (s *bookingService) RequestRefund(ctx context.Context, id string) error {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != models.StatusCancelled {
		return validationErr("status", "refunds can only be requested for cancelled bookings")
	}
	if b.PaymentReference == nil || *b.PaymentReference == "" {
		return validationErr("payment_reference", "booking has no payment to refund")
	}
	if s.opts.OpsEmail == "" {
		return errors.New("no operations email configured")
	}

	if err := notify(ctx, s.sender, notification.RefundRequest(s.opts.OpsEmail, b)); err != nil {
		return err
	}
	log.Printf("[BookingService] refund requested for booking %s", b.ID)
	return nil
}

func rescheduleFields(b *models.Booking, newDate string) map[string]any {
	fields := map[string]any{
		"intended_date":     newDate,
		"trip_id":           nil,
		"rescheduled_count": b.RescheduledCount + 1,
	}
	if b.Status == models.StatusConfirmed {
		fields["confirmed_date"] = newDate
	}
	return fields
}

// Reschedule moves a booking to newDate: it leaves its current trip, gets
// the new date and is allocated again.
func (s *bookingService) Reschedule(ctx context.Context, id, newDate string) (*models.Booking, error) {
	if err := parseDate("date", newDate); err != nil {
		return nil, err
	}
	if newDate < s.opts.today() {
		return nil, validationErr("date", "cannot reschedule into the past")
	}

	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		b, err := s.lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !assignable(b.Status) {
			return validationErr("status", "a %s booking cannot be rescheduled", b.Status)
		}
		fields := rescheduleFields(b, newDate)
		if b.HasTrip() {
			if err := s.detachFromTrip(ctx, tx, b); err != nil {
				return err
			}
		}
		return s.bookings.Updates(ctx, tx, b.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.allocator.Assign(ctx, id); err != nil {
		if !IsAllocationFailure(err) {
			return nil, fmt.Errorf("booking %s rescheduled but not reassigned: %w", id, err)
		}
		s.raiseAlert(ctx, id, err)
	}

	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	runHooks(ctx, "BookingService", []hook{notifyHook(s.sender, notification.ForBooking(notification.KindRescheduled, b))})
	return b, nil
}
