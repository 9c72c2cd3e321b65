package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/restobooking/internal/agent"
	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/Domenick1991/restobooking/internal/service/assistant"
	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const timeLayout = "2006-01-02T15:04:05"

type tableResponse struct {
	ID       int    `json:"table_id"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
	OrderIDs []int  `json:"order_ids"`
}

type bookingResponse struct {
	ID         int    `json:"booking_id"`
	CustomerID int    `json:"customer_id"`
	TableID    int    `json:"table_id"`
	Time       string `json:"time"`
	Guests     int    `json:"guests"`
	Status     string `json:"status"`
}

type customerResponse struct {
	ID               int    `json:"customer_id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role"`
	ActiveBookingIDs []int  `json:"active_booking_ids"`
	Placeholder      bool   `json:"placeholder,omitempty"`
}

type bookingDetailsResponse struct {
	bookingResponse
	Customer customerResponse `json:"customer"`
	Table    tableResponse    `json:"table"`
	Broken   bool             `json:"broken,omitempty"`
}

func newTableResponse(t domain.Table) tableResponse {
	ids := t.OrderIDs
	if ids == nil {
		ids = []int{}
	}
	return tableResponse{ID: t.ID, Capacity: t.Capacity, Status: string(t.Status), OrderIDs: ids}
}

func newTableResponses(tables []domain.Table) []tableResponse {
	out := make([]tableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, newTableResponse(t))
	}
	return out
}

func newBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		TableID:    b.TableID,
		Time:       b.Time.Format(timeLayout),
		Guests:     b.Guests,
		Status:     string(b.Status),
	}
}

// newCustomerResponse never exposes the stored credential.
func newCustomerResponse(c domain.Customer) customerResponse {
	ids := c.ActiveBookingIDs
	if ids == nil {
		ids = []int{}
	}
	return customerResponse{
		ID:               c.ID,
		Name:             c.Name,
		Phone:            c.Phone,
		Email:            c.Email,
		Role:             string(c.Role),
		ActiveBookingIDs: ids,
		Placeholder:      c.Placeholder,
	}
}

func newDetailsResponse(d booking.BookingDetails) bookingDetailsResponse {
	return bookingDetailsResponse{
		bookingResponse: newBookingResponse(d.Booking),
		Customer:        newCustomerResponse(d.Customer),
		Table:           newTableResponse(d.Table),
		Broken:          d.Customer.Placeholder || d.Table.Placeholder,
	}
}

func newDetailsResponses(details []booking.BookingDetails) []bookingDetailsResponse {
	out := make([]bookingDetailsResponse, 0, len(details))
	for _, d := range details {
		out = append(out, newDetailsResponse(d))
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrTableNotFound),
		errors.Is(err, booking.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, assistant.ErrMissingParam),
		errors.Is(err, assistant.ErrAgentFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrUnavailableSlot),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, booking.ErrCustomerHasBookings),
		errors.Is(err, booking.ErrPhoneTaken),
		errors.Is(err, booking.ErrTableInUse),
		errors.Is(err, booking.ErrTableStatusManaged):
		return http.StatusConflict
	case errors.Is(err, assistant.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, agent.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
