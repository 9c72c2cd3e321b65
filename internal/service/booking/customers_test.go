package booking

import (
	"context"
	"testing"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterCustomer_IdempotentByPhone(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	ctx := context.Background()

	c, created, err := f.ledger.RegisterCustomer(ctx, RegisterCustomerInput{Name: "An", Phone: "0900000000", Role: "MANAGER", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, c.ID)
	assert.Equal(t, domain.RoleManager, c.Role)
	assert.NotEqual(t, "secret", c.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(c.Password), []byte("secret")))

	again, created, err := f.ledger.RegisterCustomer(ctx, RegisterCustomerInput{Name: "Other", Phone: " 0900000000 "})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "An", again.Name)
	assert.Len(t, f.customers(t), 1)

	_, _, err = f.ledger.RegisterCustomer(ctx, RegisterCustomerInput{Phone: "0911111111"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterCustomer_ThenBookReusesRecord(t *testing.T) {
	f := newFixture(t, twoTables(), nil, nil)
	ctx := context.Background()

	c, _, err := f.ledger.RegisterCustomer(ctx, RegisterCustomerInput{Name: "Binh", Phone: "0911111111"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, c.Role)

	b, err := f.ledger.Create(ctx, request("0911111111", 2, dinner))
	require.NoError(t, err)
	assert.Equal(t, c.ID, b.CustomerID)

	found, err := f.ledger.FindCustomerByPhone(ctx, "0911111111")
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID}, found.ActiveBookingIDs)
	assert.Equal(t, "Binh", found.Name)
}

func TestUpdateCustomer(t *testing.T) {
	customers := []domain.Customer{
		{ID: 1, Name: "An", Phone: "0900000000", Role: domain.RoleCustomer, ActiveBookingIDs: []int{4}},
		{ID: 2, Name: "Binh", Phone: "0911111111", Role: domain.RoleCustomer, ActiveBookingIDs: []int{}},
	}
	f := newFixture(t, nil, nil, customers)
	ctx := context.Background()

	c, err := f.ledger.UpdateCustomer(ctx, 1, UpdateCustomerInput{Name: "An Nguyen", Email: "an@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "An Nguyen", c.Name)
	assert.Equal(t, "0900000000", c.Phone)
	assert.Equal(t, []int{4}, c.ActiveBookingIDs, "active bookings survive an update")

	_, err = f.ledger.UpdateCustomer(ctx, 1, UpdateCustomerInput{Phone: "0911111111"})
	assert.ErrorIs(t, err, ErrPhoneTaken)

	c, err = f.ledger.UpdateCustomer(ctx, 1, UpdateCustomerInput{Phone: "0922222222"})
	require.NoError(t, err)
	assert.Equal(t, "0922222222", c.Phone)

	_, err = f.ledger.UpdateCustomer(ctx, 3, UpdateCustomerInput{Name: "x"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	got, err := f.ledger.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", got.Email)
}

func TestDeleteCustomer_BlockedWhileReferenced(t *testing.T) {
	f := newFixture(t, twoTables(), nil, nil)
	ctx := context.Background()

	b, err := f.ledger.Create(ctx, request("0900000000", 2, dinner))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Cancel(ctx, b.ID))

	err = f.ledger.DeleteCustomer(ctx, b.CustomerID)
	assert.ErrorIs(t, err, ErrCustomerHasBookings, "cancelled bookings still reference the customer")

	require.NoError(t, f.ledger.Delete(ctx, b.ID))
	require.NoError(t, f.ledger.DeleteCustomer(ctx, b.CustomerID))
	assert.Empty(t, f.customers(t))

	assert.ErrorIs(t, f.ledger.DeleteCustomer(ctx, b.CustomerID), ErrCustomerNotFound)

	all, err := f.ledger.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
