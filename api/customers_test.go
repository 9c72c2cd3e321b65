package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerUseCase struct {
	mock.Mock
}

func (m *MockCustomerUseCase) RegisterCustomer(ctx context.Context, input booking.RegisterCustomerInput) (*domain.Customer, bool, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.Bool(1), args.Error(2)
}

func (m *MockCustomerUseCase) GetCustomer(ctx context.Context, id int) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) UpdateCustomer(ctx context.Context, id int, input booking.UpdateCustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) DeleteCustomer(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func TestCustomerHandler_register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, created := range []bool{true, false} {
		mockService := &MockCustomerUseCase{}
		handler := NewCustomerHandler(mockService)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = jsonRequest("POST", "/customers", registerCustomerRequest{Name: "An", Phone: "0900000000", Password: "secret"})

		customer := &domain.Customer{ID: 1, Name: "An", Phone: "0900000000", Role: domain.RoleCustomer, Password: "$2a$hash"}
		mockService.On("RegisterCustomer", c.Request.Context(), booking.RegisterCustomerInput{
			Name: "An", Phone: "0900000000", Password: "secret",
		}).Return(customer, created, nil)

		handler.register(c)

		if created {
			assert.Equal(t, http.StatusCreated, w.Code)
		} else {
			assert.Equal(t, http.StatusOK, w.Code)
		}
		assert.NotContains(t, w.Body.String(), "hash")
		mockService.AssertExpectations(t)
	}
}

func TestCustomerHandler_findByPhone(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/customers?phone=0900000000", nil)

	mockService.On("FindCustomerByPhone", c.Request.Context(), "0900000000").
		Return(&domain.Customer{ID: 4, Phone: "0900000000", ActiveBookingIDs: []int{2}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response customerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 4, response.ID)
	assert.Equal(t, []int{2}, response.ActiveBookingIDs)
	mockService.AssertNotCalled(t, "ListCustomers", mock.Anything)
}

func TestCustomerHandler_deleteWithBookings(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	c.Request = httptest.NewRequest("DELETE", "/customers/4", nil)

	mockService.On("DeleteCustomer", c.Request.Context(), 4).Return(booking.ErrCustomerHasBookings)

	handler.delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCustomerHandler_updatePhoneTaken(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	c.Request = jsonRequest("PATCH", "/customers/4", booking.UpdateCustomerInput{Phone: "0911111111"})

	mockService.On("UpdateCustomer", c.Request.Context(), 4, booking.UpdateCustomerInput{Phone: "0911111111"}).
		Return(nil, booking.ErrPhoneTaken)

	handler.update(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}
