package service

import (
	"context"
	"errors"
	"log"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertService struct {
	repo   repository.AlertRepository
	sender notification.Sender
	opts   Options
}

func NewAlertService(repo repository.AlertRepository, sender notification.Sender, opts Options) *AlertService {
	return &AlertService{repo: repo, sender: sender, opts: opts.withDefaults()}
}

func alertKindFor(err error) models.AlertKind {
	if IsConfigurationError(err) {
		return models.AlertConfiguration
	}
	return models.AlertCapacityExceeded
}

// RaiseForAllocation records why a booking was left without a trip and
// tells operations. An open alert of the same kind for the booking is reused
// without a second email.
func (s *AlertService) RaiseForAllocation(ctx context.Context, bookingID string, cause error) (*models.Alert, error) {
	return s.Raise(ctx, alertKindFor(cause), bookingID, cause.Error())
}

func (s *AlertService) Raise(ctx context.Context, kind models.AlertKind, bookingID, message string) (*models.Alert, error) {
	existing, err := s.repo.FindOpen(ctx, kind, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		BookingID: bookingID,
		Message:   message,
		CreatedAt: s.opts.now(),
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}
	log.Printf("[AlertService] %s for booking %s: %s", kind, bookingID, message)

	if s.opts.OpsEmail != "" {
		runHooks(ctx, "AlertService", []hook{
			notifyHook(s.sender, notification.CapacityOverflow(s.opts.OpsEmail, bookingID, message)),
		})
	}
	return alert, nil
}

func (s *AlertService) List(ctx context.Context, resolved *bool) ([]models.Alert, error) {
	return s.repo.Find(ctx, resolved)
}

func (s *AlertService) Resolve(ctx context.Context, id string) error {
	err := s.repo.Resolve(ctx, id, s.opts.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAlertNotFound
	}
	return err
}

// ResolveForBooking closes the booking's open alerts once it got a trip.
func (s *AlertService) ResolveForBooking(ctx context.Context, bookingID string) {
	n, err := s.repo.ResolveForBooking(ctx, bookingID, s.opts.now())
	if err != nil {
		log.Printf("[AlertService] failed to resolve alerts for booking %s: %v", bookingID, err)
		return
	}
	if n > 0 {
		log.Printf("[AlertService] resolved %d alerts for booking %s", n, bookingID)
	}
}
