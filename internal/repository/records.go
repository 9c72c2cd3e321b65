package repository

import (
	"encoding/json"
	"time"

	"github.com/Domenick1991/restobooking/internal/domain"
)

// Trailing zero fractions are dropped, so whole-second times keep the plain layout.
const recordTimeLayout = "2006-01-02T15:04:05.999999999"

var recordTimeLayouts = []string{
	recordTimeLayout,
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

type TableRecord struct {
	TableID  int    `json:"tableId"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
	OrderIDs []int  `json:"orderIds"`
}

type BookingRecord struct {
	BookingID      int    `json:"bookingId"`
	CustomerID     int    `json:"customerId"`
	TableID        int    `json:"tableId"`
	BookingTime    string `json:"bookingTime"`
	NumberOfGuests int    `json:"numberOfGuests"`
	Status         string `json:"status"`
}

type CustomerRecord struct {
	CustomerID       int    `json:"customerId"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role"`
	Password         string `json:"password"`
	ActiveBookingIDs []int  `json:"activeBookingIds"`
}

type OrderItemRecord struct {
	ItemID int `json:"itemId"`
	Amount int `json:"amount"`
}

type OrderRecord struct {
	OrderID     int               `json:"orderId"`
	BookingID   int               `json:"bookingId"`
	TableID     int               `json:"tableId"`
	OrderTime   string            `json:"orderTime,omitempty"`
	Status      string            `json:"status"`
	TotalAmount float64           `json:"totalAmount"`
	Items       []OrderItemRecord `json:"items"`
}

func encode(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func decode(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

func tableRecord(t domain.Table) TableRecord {
	return TableRecord{TableID: t.ID, Capacity: t.Capacity, Status: string(t.Status), OrderIDs: nonNil(t.OrderIDs)}
}

func (r TableRecord) toDomain() (domain.Table, error) {
	status := domain.TableStatusAvailable
	if r.Status != "" {
		parsed, err := domain.ParseTableStatus(r.Status)
		if err != nil {
			return domain.Table{}, err
		}
		status = parsed
	}
	return domain.Table{ID: r.TableID, Capacity: r.Capacity, Status: status, OrderIDs: nonNil(r.OrderIDs)}, nil
}

func bookingRecord(b domain.Booking, loc *time.Location) BookingRecord {
	return BookingRecord{
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		TableID:        b.TableID,
		BookingTime:    formatTime(b.Time, loc),
		NumberOfGuests: b.Guests,
		Status:         string(b.Status),
	}
}

func (r BookingRecord) toDomain(loc *time.Location) (domain.Booking, error) {
	status := domain.BookingStatusConfirmed
	if r.Status != "" {
		parsed, err := domain.ParseBookingStatus(r.Status)
		if err != nil {
			return domain.Booking{}, err
		}
		status = parsed
	}
	return domain.Booking{
		ID:         r.BookingID,
		CustomerID: r.CustomerID,
		TableID:    r.TableID,
		Time:       parseTime(r.BookingTime, loc),
		Guests:     r.NumberOfGuests,
		Status:     status,
	}, nil
}

func customerRecord(c domain.Customer) CustomerRecord {
	return CustomerRecord{
		CustomerID:       c.ID,
		Name:             c.Name,
		Phone:            c.Phone,
		Email:            c.Email,
		Role:             string(c.Role),
		Password:         c.Password,
		ActiveBookingIDs: nonNil(c.ActiveBookingIDs),
	}
}

func (r CustomerRecord) toDomain() domain.Customer {
	return domain.Customer{
		ID:               r.CustomerID,
		Name:             r.Name,
		Phone:            r.Phone,
		Email:            r.Email,
		Role:             domain.ParseRole(r.Role),
		Password:         r.Password,
		ActiveBookingIDs: nonNil(r.ActiveBookingIDs),
	}
}

func orderRecord(o domain.Order, loc *time.Location) OrderRecord {
	items := make([]OrderItemRecord, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemRecord{ItemID: it.ItemID, Amount: it.Amount})
	}
	return OrderRecord{
		OrderID:     o.ID,
		BookingID:   o.BookingID,
		TableID:     o.TableID,
		OrderTime:   formatTime(o.Time, loc),
		Status:      string(o.Status),
		TotalAmount: o.Total,
		Items:       items,
	}
}

func (r OrderRecord) toDomain(loc *time.Location) domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{ItemID: it.ItemID, Amount: it.Amount})
	}
	status := domain.OrderStatus(r.Status)
	if status == "" {
		status = domain.OrderStatusPending
	}
	return domain.Order{
		ID:        r.OrderID,
		BookingID: r.BookingID,
		TableID:   r.TableID,
		Time:      parseTime(r.OrderTime, loc),
		Status:    status,
		Total:     r.TotalAmount,
		Items:     items,
	}
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(recordTimeLayout)
}

// parseTime returns the zero time for empty or unparsable input.
func parseTime(raw string, loc *time.Location) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range recordTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
