package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/resolver"
)

func (l *Ledger) Get(ctx context.Context, id int) (*domain.Booking, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := g.Booking(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}
	out := *b
	return &out, nil
}

func (l *Ledger) List(ctx context.Context) ([]domain.Booking, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.Bookings, nil
}

// View resolves a booking with its customer and table; broken links come back as placeholders.
func (l *Ledger) View(ctx context.Context, id int) (*BookingDetails, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := g.Booking(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}
	details := detailsOf(g.ResolveBooking(b))
	return &details, nil
}

func (l *Ledger) Views(ctx context.Context) ([]BookingDetails, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BookingDetails, 0, len(g.Bookings))
	for _, v := range g.Views() {
		out = append(out, detailsOf(v))
	}
	return out, nil
}

// ListByCustomer returns every booking of the customer with the phone number, in any status.
func (l *Ledger) ListByCustomer(ctx context.Context, phone string) ([]BookingDetails, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := g.CustomerByPhone(strings.TrimSpace(phone))
	if !ok {
		return nil, fmt.Errorf("%w: phone %s", ErrCustomerNotFound, phone)
	}
	out := make([]BookingDetails, 0)
	for _, b := range g.BookingsOf(c.ID) {
		out = append(out, detailsOf(g.ResolveBooking(b)))
	}
	return out, nil
}

func detailsOf(v resolver.BookingView) BookingDetails {
	return BookingDetails{Booking: *v.Booking, Customer: *v.Customer, Table: *v.Table}
}
