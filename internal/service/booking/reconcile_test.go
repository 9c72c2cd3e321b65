package booking

import (
	"context"
	"testing"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_RepairsDrift(t *testing.T) {
	stale := domain.NewTable(2, 4)
	stale.Status = domain.TableStatusReserved
	tables := []domain.Table{domain.NewTable(1, 2), stale}
	bookings := []domain.Booking{
		{ID: 1, CustomerID: 1, TableID: 1, Time: dinner, Guests: 2, Status: domain.BookingStatusConfirmed},
		{ID: 2, CustomerID: 9, TableID: 2, Time: dinner, Guests: 4, Status: domain.BookingStatusCancelled},
		{ID: 3, CustomerID: 0, TableID: 42, Time: dinner, Guests: 2, Status: domain.BookingStatusConfirmed},
	}
	customers := []domain.Customer{{ID: 1, Name: "An", Phone: "0900000000", Role: domain.RoleCustomer, ActiveBookingIDs: []int{}}}
	f := newFixture(t, tables, bookings, customers)
	ctx := context.Background()

	report, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{CustomersCreated: 2, BookingsRelinked: 1, ActiveListsFixed: 2, TablesFixed: 2}, report)

	stored := f.customers(t)
	require.Len(t, stored, 3)
	assert.Equal(t, []int{1}, stored[0].ActiveBookingIDs)
	assert.Equal(t, 9, stored[1].ID)
	assert.Equal(t, domain.PlaceholderCustomerName, stored[1].Name)
	assert.Equal(t, 10, stored[2].ID)
	assert.Equal(t, []int{3}, stored[2].ActiveBookingIDs)

	assert.Equal(t, 10, f.bookings(t)[2].CustomerID)

	storedTables := f.tables(t)
	assert.Equal(t, domain.TableStatusReserved, storedTables[0].Status)
	assert.Equal(t, domain.TableStatusAvailable, storedTables[1].Status)

	again, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed())
}

func TestReconcile_CleanStateWritesNothing(t *testing.T) {
	f := newFixture(t, twoTables(), nil, nil)
	ctx := context.Background()

	_, err := f.ledger.Create(ctx, request("0900000000", 2, dinner))
	require.NoError(t, err)

	report, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{}, report)
}

func TestReconcile_LeavesMaintenanceTableUnderBooking(t *testing.T) {
	closed := domain.NewTable(1, 4)
	closed.Status = domain.TableStatusMaintenance
	bookings := []domain.Booking{{ID: 1, CustomerID: 1, TableID: 1, Time: dinner, Guests: 2, Status: domain.BookingStatusConfirmed}}
	customers := []domain.Customer{{ID: 1, Name: "An", Phone: "0900000000", Role: domain.RoleCustomer, ActiveBookingIDs: []int{1}}}
	f := newFixture(t, []domain.Table{closed}, bookings, customers)

	report, err := f.ledger.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{TablesSkipped: 1}, report)
	assert.False(t, report.Changed())
	assert.Equal(t, domain.TableStatusMaintenance, f.tables(t)[0].Status)
}

func TestReconcile_StandInsGetDistinctPhones(t *testing.T) {
	bookings := []domain.Booking{
		{ID: 1, CustomerID: 7, TableID: 1, Time: dinner, Guests: 2, Status: domain.BookingStatusCancelled},
		{ID: 2, CustomerID: 8, TableID: 1, Time: dinner, Guests: 2, Status: domain.BookingStatusCancelled},
	}
	legacy := *domain.PlaceholderCustomer(3)
	legacy.Placeholder = false
	f := newFixture(t, twoTables(), bookings, []domain.Customer{legacy})
	ctx := context.Background()

	report, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CustomersCreated)
	assert.Equal(t, 1, report.StandInPhonesFixed)

	stored := f.customers(t)
	require.Len(t, stored, 3)
	phones := map[string]bool{}
	for _, c := range stored {
		assert.True(t, domain.IsStandInPhone(c.Phone), c.Phone)
		phones[c.Phone] = true
	}
	assert.Len(t, phones, 3)

	_, err = f.ledger.FindCustomerByPhone(ctx, domain.PlaceholderCustomerPhone)
	require.ErrorIs(t, err, ErrCustomerNotFound)

	c, created, err := f.ledger.RegisterCustomer(ctx, RegisterCustomerInput{Name: "Zero", Phone: domain.PlaceholderCustomerPhone})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 9, c.ID)
	assert.Equal(t, "Zero", c.Name)

	_, _, err = f.ledger.RegisterCustomer(ctx, RegisterCustomerInput{Name: "Sneaky", Phone: domain.StandInPhone(7)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReconcile_RebuildsTableOrderLinks(t *testing.T) {
	first, second := domain.NewTable(1, 2), domain.NewTable(2, 4)
	first.Status = domain.TableStatusReserved
	first.OrderIDs = []int{5, 99}
	bookings := []domain.Booking{{ID: 1, CustomerID: 1, TableID: 1, Time: dinner, Guests: 2, Status: domain.BookingStatusConfirmed}}
	customers := []domain.Customer{{ID: 1, Name: "An", Phone: "0900000000", Role: domain.RoleCustomer, ActiveBookingIDs: []int{1}}}
	f := newFixture(t, []domain.Table{first, second}, bookings, customers)
	ctx := context.Background()

	require.NoError(t, f.gw.WriteOrders(ctx, []domain.Order{
		{ID: 5, BookingID: 1, Time: dinner, Status: domain.OrderStatusPending},
		{ID: 6, BookingID: 1, Time: dinner, Status: domain.OrderStatusReady},
		{ID: 7, BookingID: 1, TableID: 2, Time: dinner, Status: domain.OrderStatusPending},
		{ID: 8, BookingID: 40, TableID: 2, Time: dinner, Status: domain.OrderStatusCompleted},
	}))

	report, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{OrderLinksFixed: 2}, report)

	tables := f.tables(t)
	assert.Equal(t, []int{5, 6}, tables[0].OrderIDs)
	assert.Equal(t, []int{7}, tables[1].OrderIDs)

	again, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed())
}
