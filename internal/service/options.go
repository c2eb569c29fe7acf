package service

import (
	"context"
	"log"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/metrics"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
)

// Options carries the allocation policy and the clock shared by the
// services.
type Options struct {
	// ConfirmPendingOnFull also promotes Pending passengers when their trip
	// fills. Paid passengers are always promoted.
	ConfirmPendingOnFull bool
	RetentionDays        int
	OpsEmail             string
	Location             *time.Location
	Now                  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RetentionDays <= 0 {
		o.RetentionDays = 7
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

// today is the calendar day in the service timezone.
func (o Options) today() string {
	return o.now().Format(models.DateLayout)
}

func (o Options) daysFromToday(n int) string {
	return o.now().AddDate(0, 0, n).Format(models.DateLayout)
}

func parseDate(field, value string) error {
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return validationErr(field, "must be a date in YYYY-MM-DD format")
	}
	return nil
}

// hook is a side effect that runs after the primary transaction committed.
type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// runHooks runs every hook independently; failures are logged and dropped.
func runHooks(ctx context.Context, tag string, hooks []hook) {
	for _, h := range hooks {
		if err := h.fn(ctx); err != nil {
			log.Printf("[%s] post-commit %s failed: %v", tag, h.name, err)
		}
	}
}

func notifyHook(sender notification.Sender, msg notification.Message) hook {
	return hook{
		name: "notify " + string(msg.Kind),
		fn: func(ctx context.Context) error {
			return notify(ctx, sender, msg)
		},
	}
}

func notify(ctx context.Context, sender notification.Sender, msg notification.Message) error {
	if sender == nil {
		return nil
	}
	if err := sender.Send(ctx, msg); err != nil {
		metrics.NotificationFailures.WithLabelValues(string(msg.Kind)).Inc()
		return &ExternalServiceError{Service: "notification", Err: err}
	}
	return nil
}
