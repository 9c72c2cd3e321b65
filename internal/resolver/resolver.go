// Package resolver joins the separately stored collections into one in-memory graph.
//
// Bookings and orders persist foreign ids only. A Graph indexes freshly loaded
// collections by id and answers lookups; a link that does not resolve yields a
// placeholder record instead of an error, so enumeration never fails on drifted data.
package resolver

import "github.com/Domenick1991/restobooking/internal/domain"

type Graph struct {
	Tables    []domain.Table
	Bookings  []domain.Booking
	Customers []domain.Customer
	Orders    []domain.Order

	tableIdx    map[int]int
	bookingIdx  map[int]int
	customerIdx map[int]int
	phoneIdx    map[string]int
}

// BookingView is a booking with its customer and table attached.
type BookingView struct {
	Booking  *domain.Booking
	Customer *domain.Customer
	Table    *domain.Table
}

// Broken reports whether either side of the booking had to be substituted.
func (v BookingView) Broken() bool {
	return v.Customer.Placeholder || v.Table.Placeholder
}

type OrderView struct {
	Order   *domain.Order
	Booking *domain.Booking
	Table   *domain.Table
}

// Build indexes the collections. The slices are owned by the graph afterwards;
// pointers handed out by accessors point into them.
func Build(tables []domain.Table, bookings []domain.Booking, customers []domain.Customer, orders []domain.Order) *Graph {
	g := &Graph{Tables: tables, Bookings: bookings, Customers: customers, Orders: orders}
	g.Reindex()
	return g
}

// Reindex must be called after records are appended to or removed from the slices.
func (g *Graph) Reindex() {
	g.tableIdx = make(map[int]int, len(g.Tables))
	for i, t := range g.Tables {
		if _, dup := g.tableIdx[t.ID]; !dup {
			g.tableIdx[t.ID] = i
		}
	}
	g.bookingIdx = make(map[int]int, len(g.Bookings))
	for i, b := range g.Bookings {
		if _, dup := g.bookingIdx[b.ID]; !dup {
			g.bookingIdx[b.ID] = i
		}
	}
	g.customerIdx = make(map[int]int, len(g.Customers))
	g.phoneIdx = make(map[string]int, len(g.Customers))
	for i, c := range g.Customers {
		if _, dup := g.customerIdx[c.ID]; !dup {
			g.customerIdx[c.ID] = i
		}
		if domain.IsStandInPhone(c.Phone) {
			continue
		}
		if _, dup := g.phoneIdx[c.Phone]; !dup {
			g.phoneIdx[c.Phone] = i
		}
	}
}

func (g *Graph) Table(id int) (*domain.Table, bool) {
	i, ok := g.tableIdx[id]
	if !ok {
		return nil, false
	}
	return &g.Tables[i], true
}

func (g *Graph) Booking(id int) (*domain.Booking, bool) {
	i, ok := g.bookingIdx[id]
	if !ok {
		return nil, false
	}
	return &g.Bookings[i], true
}

func (g *Graph) Customer(id int) (*domain.Customer, bool) {
	i, ok := g.customerIdx[id]
	if !ok {
		return nil, false
	}
	return &g.Customers[i], true
}

// CustomerByPhone returns the first stored customer with the phone number.
// Stand-in customers are never returned.
func (g *Graph) CustomerByPhone(phone string) (*domain.Customer, bool) {
	i, ok := g.phoneIdx[phone]
	if !ok {
		return nil, false
	}
	return &g.Customers[i], true
}

func (g *Graph) ResolveBooking(b *domain.Booking) BookingView {
	view := BookingView{Booking: b}
	if c, ok := g.Customer(b.CustomerID); ok {
		view.Customer = c
	} else {
		view.Customer = domain.PlaceholderCustomer(b.CustomerID)
	}
	if t, ok := g.Table(b.TableID); ok {
		view.Table = t
	} else {
		view.Table = domain.PlaceholderTable(b.TableID)
	}
	return view
}

func (g *Graph) ResolveOrder(o *domain.Order) OrderView {
	view := OrderView{Order: o}
	if b, ok := g.Booking(o.BookingID); ok {
		view.Booking = b
	} else {
		view.Booking = &domain.Booking{ID: o.BookingID, TableID: o.TableID}
	}

	tableID := o.TableID
	if tableID == 0 {
		tableID = view.Booking.TableID
	}
	if t, ok := g.Table(tableID); ok {
		view.Table = t
	} else {
		view.Table = domain.PlaceholderTable(tableID)
	}
	return view
}

// Views resolves every booking in collection order.
func (g *Graph) Views() []BookingView {
	views := make([]BookingView, 0, len(g.Bookings))
	for i := range g.Bookings {
		views = append(views, g.ResolveBooking(&g.Bookings[i]))
	}
	return views
}

// ConfirmedOn lists the confirmed bookings that reference the table.
func (g *Graph) ConfirmedOn(tableID int) []*domain.Booking {
	var out []*domain.Booking
	for i := range g.Bookings {
		b := &g.Bookings[i]
		if b.TableID == tableID && b.Active() {
			out = append(out, b)
		}
	}
	return out
}

// BookingsOf lists every booking that references the customer, in any status.
func (g *Graph) BookingsOf(customerID int) []*domain.Booking {
	var out []*domain.Booking
	for i := range g.Bookings {
		if g.Bookings[i].CustomerID == customerID {
			out = append(out, &g.Bookings[i])
		}
	}
	return out
}

func (g *Graph) MaxTableID() int {
	highest := 0
	for _, t := range g.Tables {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}

func (g *Graph) MaxBookingID() int {
	highest := 0
	for _, b := range g.Bookings {
		if b.ID > highest {
			highest = b.ID
		}
	}
	return highest
}

func (g *Graph) MaxCustomerID() int {
	highest := 0
	for _, c := range g.Customers {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest
}
