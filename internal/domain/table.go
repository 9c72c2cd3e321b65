package domain

import "slices"

type TableStatus string

const (
	TableStatusAvailable   TableStatus = "AVAILABLE"
	TableStatusReserved    TableStatus = "RESERVED"
	TableStatusOccupied    TableStatus = "OCCUPIED"
	TableStatusMaintenance TableStatus = "MAINTENANCE"
)

type Table struct {
	ID       int
	Capacity int
	Status   TableStatus
	OrderIDs []int

	// Placeholder marks a stand-in built for an id missing from storage.
	Placeholder bool
}

func NewTable(id, capacity int) Table {
	return Table{ID: id, Capacity: capacity, Status: TableStatusAvailable, OrderIDs: []int{}}
}

func PlaceholderTable(id int) *Table {
	return &Table{ID: id, Status: TableStatusAvailable, OrderIDs: []int{}, Placeholder: true}
}

func (t Table) Fits(guests int) bool {
	return t.Status == TableStatusAvailable && t.Capacity >= guests
}

// Held reports whether a confirmed booking is expected to hold the table.
func (t Table) Held() bool {
	return t.Status == TableStatusReserved || t.Status == TableStatusOccupied
}

func (t *Table) AttachOrder(orderID int) {
	if !slices.Contains(t.OrderIDs, orderID) {
		t.OrderIDs = append(t.OrderIDs, orderID)
	}
}

func (t *Table) DetachOrder(orderID int) {
	t.OrderIDs = slices.DeleteFunc(t.OrderIDs, func(id int) bool { return id == orderID })
}
