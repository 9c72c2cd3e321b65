package email

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Domenick1991/restobooking/internal/kafka"
	"github.com/Domenick1991/restobooking/internal/logger"
)

const timeLayout = "02/01/2006 15:04"

// Sender renders booking notices. Delivery is a write to the configured output.
type Sender struct {
	out io.Writer
}

func NewSender() *Sender {
	return &Sender{out: os.Stdout}
}

func NewSenderTo(out io.Writer) *Sender {
	return &Sender{out: out}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log := logger.WithComponent("email").WithField("booking_id", event.BookingID)
	if event.Email == "" {
		log.Debug("customer has no email, notice skipped")
		return nil
	}

	subject, ok := Subject(event.Type)
	if !ok {
		log.WithField("type", event.Type).Debug("no notice for event type")
		return nil
	}

	_, err := fmt.Fprintf(s.out, "to: %s\nsubject: %s\n\nDear %s,\nbooking #%d for %d guest(s) at table %d on %s is now %s.\n\n",
		event.Email, subject, event.CustomerName, event.BookingID, event.Guests, event.TableID,
		event.Time.Format(timeLayout), event.Status)
	if err != nil {
		return fmt.Errorf("send notice for booking %d: %w", event.BookingID, err)
	}
	log.WithField("to", event.Email).Info("booking notice sent")
	return nil
}

func Subject(eventType string) (string, bool) {
	switch eventType {
	case kafka.EventBookingCreated:
		return "Your table is reserved", true
	case kafka.EventBookingUpdated:
		return "Your reservation was changed", true
	case kafka.EventBookingCancelled, kafka.EventBookingDeleted:
		return "Your reservation was cancelled", true
	case kafka.EventBookingCompleted:
		return "Thank you for dining with us", true
	default:
		return "", false
	}
}
