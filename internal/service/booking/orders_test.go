package booking

import (
	"context"
	"testing"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatedWithOrders(t *testing.T) fixture {
	t.Helper()
	held := domain.NewTable(1, 4)
	held.Status = domain.TableStatusReserved
	held.OrderIDs = []int{5, 6}
	other := domain.NewTable(2, 2)
	other.OrderIDs = []int{7}
	bookings := []domain.Booking{
		{ID: 1, CustomerID: 1, TableID: 1, Time: dinner, Guests: 3, Status: domain.BookingStatusConfirmed},
		{ID: 2, CustomerID: 1, TableID: 2, Time: dinner, Guests: 2, Status: domain.BookingStatusCompleted},
	}
	customers := []domain.Customer{{ID: 1, Name: "An", Phone: "0900000000", Role: domain.RoleCustomer, ActiveBookingIDs: []int{1}}}
	f := newFixture(t, []domain.Table{held, other}, bookings, customers)

	require.NoError(t, f.gw.WriteOrders(context.Background(), []domain.Order{
		{ID: 5, BookingID: 1, Time: dinner, Status: domain.OrderStatusPending, Total: 12},
		{ID: 6, BookingID: 1, TableID: 1, Time: dinner, Status: domain.OrderStatusReady, Total: 30},
		{ID: 7, BookingID: 2, TableID: 2, Time: dinner, Status: domain.OrderStatusCompleted, Total: 8},
		{ID: 8, BookingID: 44, TableID: 9, Time: dinner, Status: domain.OrderStatusPending},
	}))
	return f
}

func TestListOrders_ResolvesLinks(t *testing.T) {
	f := seatedWithOrders(t)

	orders, err := f.ledger.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 4)

	assert.Equal(t, 1, orders[0].Booking.ID)
	assert.Equal(t, 1, orders[0].Table.ID, "table comes from the booking when the order has none")
	assert.False(t, orders[0].Table.Placeholder)

	assert.Equal(t, 44, orders[3].Booking.ID)
	assert.True(t, orders[3].Table.Placeholder)
	assert.Equal(t, 9, orders[3].Table.ID)
}

func TestOrdersOfBooking(t *testing.T) {
	f := seatedWithOrders(t)
	ctx := context.Background()

	orders, err := f.ledger.OrdersOfBooking(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 5, orders[0].Order.ID)
	assert.Equal(t, 6, orders[1].Order.ID)

	orders, err = f.ledger.OrdersOfBooking(ctx, 44)
	require.NoError(t, err)
	assert.Len(t, orders, 1, "orders of a deleted booking stay visible")

	_, err = f.ledger.OrdersOfBooking(ctx, 100)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDelete_DetachesOrdersFromTable(t *testing.T) {
	f := seatedWithOrders(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Delete(ctx, 1))
	tables := f.tables(t)
	assert.Empty(t, tables[0].OrderIDs)
	assert.Equal(t, domain.TableStatusAvailable, tables[0].Status)
	assert.Equal(t, []int{7}, tables[1].OrderIDs)

	// A closed booking does not release its table but still loses its order links.
	require.NoError(t, f.ledger.Delete(ctx, 2))
	tables = f.tables(t)
	assert.Empty(t, tables[1].OrderIDs)
	assert.Equal(t, domain.TableStatusAvailable, tables[1].Status)

	report, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.OrderLinksFixed)
}
