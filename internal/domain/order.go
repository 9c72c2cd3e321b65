package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type OrderItem struct {
	ItemID int
	Amount int
}

// Order is carried only for its booking and table identity; line editing lives elsewhere.
type Order struct {
	ID        int
	BookingID int
	TableID   int
	Time      time.Time
	Status    OrderStatus
	Total     float64
	Items     []OrderItem
}
