package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/payment"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	metadataBookingKey = "booking"
	verifyLockTTL      = 30 * time.Second
)

// Locker collapses concurrent work on the same key. ok is false when the
// key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type PaymentConfig struct {
	Currency    string
	CallbackURL string
}

type PaymentService interface {
	InitializePayment(ctx context.Context, provider string, in CreateBookingInput) (*payment.InitResult, error)
	VerifyPayment(ctx context.Context, provider, reference string) (*models.Booking, error)
	PurgeAbandonedReservations(ctx context.Context) (int64, error)
}

type paymentService struct {
	gateways     payment.Registry
	reservations repository.ReservationRepository
	bookings     repository.BookingRepository
	rules        repository.PriceRuleRepository
	bookingSvc   BookingService
	locker       Locker
	cfg          PaymentConfig
	opts         Options
}

func NewPaymentService(
	gateways payment.Registry,
	reservations repository.ReservationRepository,
	bookings repository.BookingRepository,
	rules repository.PriceRuleRepository,
	bookingSvc BookingService,
	locker Locker,
	cfg PaymentConfig,
	opts Options,
) PaymentService {
	return &paymentService{
		gateways:     gateways,
		reservations: reservations,
		bookings:     bookings,
		rules:        rules,
		bookingSvc:   bookingSvc,
		locker:       locker,
		cfg:          cfg,
		opts:         opts.withDefaults(),
	}
}

func (s *paymentService) gateway(provider string) (payment.Gateway, error) {
	g, ok := s.gateways.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return g, nil
}

// InitializePayment prices the booking, opens a checkout with the provider
// and keeps the pending booking as a reservation under the gateway
// reference.
func (s *paymentService) InitializePayment(ctx context.Context, provider string, in CreateBookingInput) (*payment.InitResult, error) {
	gw, err := s.gateway(provider)
	if err != nil {
		return nil, err
	}

	in.Status = ""
	in.PaymentReference = ""
	if err := in.Validate(); err != nil {
		return nil, err
	}

	key := models.PriceRuleKey(in.Pickup, in.Destination, in.VehicleType)
	rule, err := s.rules.FindByID(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ConfigurationError{PriceRuleID: key, Reason: "price rule not found"}
	}
	if err != nil {
		return nil, err
	}
	in.TotalFare = rule.Price
	in.PaymentProvider = provider

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal pending booking: %w", err)
	}

	res, err := gw.Initialize(ctx, payment.InitRequest{
		Reference:   "TT-" + uuid.NewString(),
		Email:       in.Email,
		Amount:      rule.Price,
		Currency:    s.cfg.Currency,
		CallbackURL: s.cfg.CallbackURL,
		Description: fmt.Sprintf("%s to %s (%s) on %s", in.Pickup, in.Destination, in.VehicleType, in.IntendedDate),
		Metadata:    map[string]string{metadataBookingKey: string(payload)},
	})
	if err != nil {
		return nil, &ExternalServiceError{Service: provider, Err: err}
	}

	err = s.reservations.Save(ctx, &models.Reservation{
		Reference: res.Reference,
		Provider:  provider,
		Payload:   string(payload),
		Amount:    rule.Price,
		CreatedAt: s.opts.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	log.Printf("[PaymentService] %s checkout %s opened for %s", provider, res.Reference, in.Email)
	return res, nil
}

// VerifyPayment turns a paid checkout into a Paid booking. Repeated calls
// for the same reference return the booking created by the first one.
func (s *paymentService) VerifyPayment(ctx context.Context, provider, reference string) (*models.Booking, error) {
	gw, err := s.gateway(provider)
	if err != nil {
		return nil, err
	}
	if reference == "" {
		return nil, validationErr("reference", "is required")
	}

	if b, err := s.existing(ctx, reference); b != nil || err != nil {
		return b, err
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "payment:"+reference, verifyLockTTL)
		switch {
		case err != nil:
			log.Printf("[PaymentService] lock for %s unavailable, continuing: %v", reference, err)
		case !ok:
			return nil, ErrPaymentInProgress
		default:
			defer release()
			// another caller may have finished between the first lookup and the lock
			if b, err := s.existing(ctx, reference); b != nil || err != nil {
				return b, err
			}
		}
	}

	v, err := gw.Verify(ctx, reference)
	if err != nil {
		return nil, &ExternalServiceError{Service: provider, Err: err}
	}
	if !v.Paid {
		return nil, fmt.Errorf("%w: %s is %q", ErrPaymentNotPaid, reference, v.Status)
	}

	in, err := s.pendingBooking(ctx, reference, v)
	if err != nil {
		return nil, err
	}
	in.Status = models.StatusPaid
	in.PaymentReference = reference
	in.PaymentProvider = provider
	if in.TotalFare == 0 {
		in.TotalFare = v.Amount
	}

	b, err := s.bookingSvc.CreateBooking(ctx, *in)
	if errors.Is(err, ErrDuplicatePayment) {
		return s.bookings.FindByPaymentReference(ctx, reference)
	}
	if err != nil {
		return nil, err
	}

	if err := s.reservations.Delete(ctx, reference); err != nil {
		log.Printf("[PaymentService] failed to delete reservation %s: %v", reference, err)
	}
	log.Printf("[PaymentService] %s payment %s -> booking %s", provider, reference, b.ID)
	return b, nil
}

func (s *paymentService) existing(ctx context.Context, reference string) (*models.Booking, error) {
	b, err := s.bookings.FindByPaymentReference(ctx, reference)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return b, err
}

// pendingBooking reads the booking captured at initialization, falling back
// to the copy the gateway echoed in its metadata.
func (s *paymentService) pendingBooking(ctx context.Context, reference string, v *payment.Verification) (*CreateBookingInput, error) {
	var payload string
	res, err := s.reservations.FindByReference(ctx, reference)
	switch {
	case err == nil:
		payload = res.Payload
	case errors.Is(err, gorm.ErrRecordNotFound):
		payload = v.Metadata[metadataBookingKey]
	default:
		return nil, err
	}
	if payload == "" {
		return nil, validationErr("reference", "no pending booking found for %s", reference)
	}

	var in CreateBookingInput
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		return nil, fmt.Errorf("decode pending booking %s: %w", reference, err)
	}
	return &in, nil
}

// PurgeAbandonedReservations drops reservations older than the retention
// window; their checkouts were never verified.
func (s *paymentService) PurgeAbandonedReservations(ctx context.Context) (int64, error) {
	cutoff := s.opts.now().AddDate(0, 0, -s.opts.RetentionDays)
	n, err := s.reservations.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[PaymentService] purged %d abandoned reservations", n)
	}
	return n, nil
}
