package notification

import (
	"context"
	"fmt"
)

// Sender dispatches a notification. Callers treat failures as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// QueueSender hands messages to the broker; delivery happens in the
// notification consumer.
type QueueSender struct {
	publisher Publisher
}

func NewQueueSender(publisher Publisher) *QueueSender {
	return &QueueSender{publisher: publisher}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, msg.Kind.RoutingKey(), msg); err != nil {
		return fmt.Errorf("queue notification %s: %w", msg.Kind, err)
	}
	return nil
}

// MailSender renders and mails the message in-process.
type MailSender struct {
	mailer Mailer
}

func NewMailSender(mailer Mailer) *MailSender {
	return &MailSender{mailer: mailer}
}

func (s *MailSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	subject, body, err := Render(msg)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Email{To: msg.To, Subject: subject, HTML: body})
}
