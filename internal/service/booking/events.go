package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/kafka"
	"github.com/google/uuid"
)

// publish runs after a successful commit; a failed publish is only logged.
func (l *Ledger) publish(ctx context.Context, eventType string, b domain.Booking, c domain.Customer) {
	if l.producer == nil || l.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		EventID:      uuid.NewString(),
		BookingID:    b.ID,
		CustomerID:   b.CustomerID,
		CustomerName: c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		TableID:      b.TableID,
		Guests:       b.Guests,
		Time:         b.Time,
		Status:       string(b.Status),
		OccurredAt:   time.Now(),
	}

	log := l.log.WithField("booking_id", b.ID).WithField("event", eventType)
	if err := l.producer.Publish(ctx, l.bookingTopic, event.Key(), event); err != nil {
		log.WithError(err).Warn("failed to publish booking event")
		return
	}
	if l.notificationsTopic != "" {
		if err := l.producer.Publish(ctx, l.notificationsTopic, event.Key(), event); err != nil {
			log.WithError(err).Warn("failed to publish notification")
		}
	}
}
