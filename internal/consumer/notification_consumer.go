package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/metrics"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	amqp "github.com/rabbitmq/amqp091-go"
)

const deliveryTimeout = 30 * time.Second

type NotificationConsumer struct {
	sender notification.Sender
}

func NewNotificationConsumer(sender notification.Sender) *NotificationConsumer {
	return &NotificationConsumer{sender: sender}
}

// Start delivers queued notifications until msgs is closed. done is closed
// once the loop exits.
func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) (done <-chan struct{}) {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		log.Println("[NotificationConsumer] channel closed, stopping consumer")
	}()
	return ch
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	var m notification.Message
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		log.Printf("[NotificationConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if err := m.Validate(); err != nil {
		log.Printf("[NotificationConsumer] dropping invalid message: %v", err)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := nc.sender.Send(ctx, m); err != nil {
		log.Printf("[NotificationConsumer] failed to deliver %s for booking %s: %v", m.Kind, m.BookingID, err)
		metrics.NotificationFailures.WithLabelValues(string(m.Kind)).Inc()
		// a redelivered message gets one more attempt before it is dropped
		msg.Nack(false, !msg.Redelivered)
		return
	}

	log.Printf("[NotificationConsumer] delivered %s to %s", m.Kind, m.To)
	msg.Ack(false)
}
