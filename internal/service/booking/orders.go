package booking

import (
	"context"
	"fmt"

	"github.com/Domenick1991/restobooking/internal/domain"
)

// OrderUseCase exposes orders as consumers of booking and table identity.
// Orders are written by the kitchen side; the ledger only reads them and keeps
// table order links in step.
type OrderUseCase interface {
	ListOrders(ctx context.Context) ([]OrderDetails, error)
	OrdersOfBooking(ctx context.Context, bookingID int) ([]OrderDetails, error)
}

// OrderDetails carries an order with its booking and table; broken links are placeholders.
type OrderDetails struct {
	Order   domain.Order
	Booking domain.Booking
	Table   domain.Table
}

func (l *Ledger) ListOrders(ctx context.Context) ([]OrderDetails, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderDetails, 0, len(g.Orders))
	for i := range g.Orders {
		v := g.ResolveOrder(&g.Orders[i])
		out = append(out, OrderDetails{Order: *v.Order, Booking: *v.Booking, Table: *v.Table})
	}
	return out, nil
}

// OrdersOfBooking fails with ErrBookingNotFound only when neither the booking
// nor any order referencing it exists.
func (l *Ledger) OrdersOfBooking(ctx context.Context, bookingID int) ([]OrderDetails, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderDetails, 0)
	for i := range g.Orders {
		if g.Orders[i].BookingID != bookingID {
			continue
		}
		v := g.ResolveOrder(&g.Orders[i])
		out = append(out, OrderDetails{Order: *v.Order, Booking: *v.Booking, Table: *v.Table})
	}
	if _, ok := g.Booking(bookingID); !ok && len(out) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBookingNotFound, bookingID)
	}
	return out, nil
}

var _ OrderUseCase = (*Ledger)(nil)
