package service

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/metrics"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"gorm.io/gorm"
)

// SettingConfirmPendingOnFull overrides Options.ConfirmPendingOnFull at
// runtime when present in the settings table.
const SettingConfirmPendingOnFull = "confirm_pending_on_full"

type ConfirmationMonitor struct {
	tx       repository.Transactor
	trips    repository.TripRepository
	bookings repository.BookingRepository
	settings repository.SettingRepository
	sender   notification.Sender
	opts     Options
}

func NewConfirmationMonitor(
	tx repository.Transactor,
	trips repository.TripRepository,
	bookings repository.BookingRepository,
	settings repository.SettingRepository,
	sender notification.Sender,
	opts Options,
) *ConfirmationMonitor {
	return &ConfirmationMonitor{
		tx:       tx,
		trips:    trips,
		bookings: bookings,
		settings: settings,
		sender:   sender,
		opts:     opts.withDefaults(),
	}
}

func (m *ConfirmationMonitor) PromotableStatuses(ctx context.Context) []models.BookingStatus {
	includePending := m.opts.ConfirmPendingOnFull
	if m.settings != nil {
		if s, err := m.settings.Get(ctx, SettingConfirmPendingOnFull); err == nil {
			if v, err := strconv.ParseBool(s.Value); err == nil {
				includePending = v
			}
		}
	}
	if includePending {
		return []models.BookingStatus{models.StatusPaid, models.StatusPending}
	}
	return []models.BookingStatus{models.StatusPaid}
}

// ConfirmTrip promotes the promotable passengers of a full trip to
// Confirmed in one transaction, then notifies each of them. Running it again
// promotes nobody.
func (m *ConfirmationMonitor) ConfirmTrip(ctx context.Context, tripID string) ([]models.Booking, error) {
	trip, err := m.trips.FindByID(ctx, tripID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	if !trip.IsFull {
		return nil, nil
	}

	statuses := m.PromotableStatuses(ctx)

	var promoted []models.Booking
	err = m.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		promoted, err = m.bookings.ConfirmPromotable(ctx, tx, trip.BookingIDs(), statuses, trip.Date)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(promoted) == 0 {
		return nil, nil
	}

	metrics.Confirmations.Add(float64(len(promoted)))
	log.Printf("[ConfirmationMonitor] trip %s full, confirmed %d bookings", trip.ID, len(promoted))

	hooks := make([]hook, 0, len(promoted))
	for i := range promoted {
		hooks = append(hooks, notifyHook(m.sender, notification.ForBooking(notification.KindStatusConfirmed, &promoted[i])))
	}
	runHooks(ctx, "ConfirmationMonitor", hooks)
	return promoted, nil
}
