// Package booking owns every multi-collection mutation of the reservation state.
//
// Each ledger operation loads tables, bookings and customers, applies its change to the
// in-memory graph and commits the touched collections in one batch, all inside a single
// critical section. Nothing is written when an operation fails.
package booking

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/kafka"
	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/Domenick1991/restobooking/internal/resolver"
	"github.com/Domenick1991/restobooking/internal/service/allocation"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTimeLayout = "02/01/2006 15:04"

// fallbackLayouts are tried after the configured layout.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	Cancel(ctx context.Context, id int) error
	Complete(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	Update(ctx context.Context, id int, input UpdateBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, id int) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListByCustomer(ctx context.Context, phone string) ([]BookingDetails, error)
	View(ctx context.Context, id int) (*BookingDetails, error)
	Views(ctx context.Context) ([]BookingDetails, error)
	Reconcile(ctx context.Context) (ReconcileReport, error)
	ParseTime(raw string) (time.Time, error)
	TimeLayout() string
}

// Store is the slice of the persistence gateway the ledger needs.
type Store interface {
	ReadTables(ctx context.Context) ([]domain.Table, error)
	ReadBookings(ctx context.Context) ([]domain.Booking, error)
	ReadCustomers(ctx context.Context) ([]domain.Customer, error)
	ReadOrders(ctx context.Context) ([]domain.Order, error)
	NewBatch() *repository.Batch
	Commit(ctx context.Context, b *repository.Batch) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Locker extends the ledger's critical section across processes.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CreateBookingInput struct {
	Customer CustomerInput `json:"customer"`
	Guests   int           `json:"guests"`
	Time     time.Time     `json:"time"`
}

// UpdateBookingInput carries raw user text; empty fields are left unchanged.
type UpdateBookingInput struct {
	Guests string `json:"guests"`
	Time   string `json:"time"`
}

type BookingDetails struct {
	Booking  domain.Booking
	Customer domain.Customer
	Table    domain.Table
}

type Ledger struct {
	store  Store
	mu     sync.Mutex
	locker Locker

	producer           Producer
	bookingTopic       string
	notificationsTopic string

	slot               time.Duration
	revalidateOnUpdate bool
	timeLayout         string
	loc                *time.Location
	hashCost           int

	nextBookingID int
	log           *logrus.Entry
}

type LedgerOption func(*Ledger)

func WithProducer(p Producer, bookingTopic string) LedgerOption {
	return func(l *Ledger) {
		l.producer = p
		l.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) LedgerOption {
	return func(l *Ledger) {
		l.notificationsTopic = topic
	}
}

func WithLocker(locker Locker) LedgerOption {
	return func(l *Ledger) {
		l.locker = locker
	}
}

func WithSlot(slot time.Duration) LedgerOption {
	return func(l *Ledger) {
		if slot > 0 {
			l.slot = slot
		}
	}
}

// WithRevalidateOnUpdate makes Update re-check capacity and overlap on the booking's
// table. Off by default: an update only rewrites the requested fields.
func WithRevalidateOnUpdate(on bool) LedgerOption {
	return func(l *Ledger) {
		l.revalidateOnUpdate = on
	}
}

func WithTimeLayout(layout string) LedgerOption {
	return func(l *Ledger) {
		if layout != "" {
			l.timeLayout = layout
		}
	}
}

func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func WithPasswordCost(cost int) LedgerOption {
	return func(l *Ledger) {
		l.hashCost = cost
	}
}

// NewLedger reads the stored bookings once to seed the booking id counter.
func NewLedger(ctx context.Context, store Store, opts ...LedgerOption) (*Ledger, error) {
	l := &Ledger{
		store:      store,
		slot:       domain.DefaultSlot,
		timeLayout: DefaultTimeLayout,
		loc:        time.Local,
		hashCost:   bcrypt.DefaultCost,
		log:        logger.WithComponent("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}

	bookings, err := store.ReadBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed booking ids: %w", err)
	}
	l.nextBookingID = resolver.Build(nil, bookings, nil, nil).MaxBookingID() + 1
	return l, nil
}

// Create seats the party at the first available table that fits and reserves it.
func (l *Ledger) Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	phone := strings.TrimSpace(input.Customer.Phone)
	switch {
	case input.Guests <= 0:
		return nil, fmt.Errorf("%w: guests must be positive", ErrInvalidInput)
	case phone == "":
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	case domain.IsStandInPhone(phone):
		return nil, fmt.Errorf("%w: phone %q is reserved", ErrInvalidInput, phone)
	case input.Time.IsZero():
		return nil, fmt.Errorf("%w: booking time is required", ErrInvalidInput)
	}

	done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	customer := resolveCustomer(g, input.Customer)

	table, ok := allocation.FindAvailable(g.Tables, input.Guests)
	if !ok {
		return nil, ErrNoTableAvailable
	}
	for _, other := range g.ConfirmedOn(table.ID) {
		if domain.Overlaps(other.Time, input.Time, l.slot) {
			return nil, fmt.Errorf("%w: table %d, booking %d", ErrTimeConflict, table.ID, other.ID)
		}
	}

	booking := domain.Booking{
		ID:         l.allocateID(g),
		CustomerID: customer.ID,
		TableID:    table.ID,
		Time:       input.Time,
		Guests:     input.Guests,
		Status:     domain.BookingStatusConfirmed,
	}
	if err := table.Transition(domain.TableStatusReserved); err != nil {
		return nil, err
	}
	customer.AddBooking(booking.ID)
	g.Bookings = append(g.Bookings, booking)

	if err := l.commit(ctx, g, repository.CollectionTables, repository.CollectionBookings, repository.CollectionCustomers); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	l.nextBookingID = booking.ID + 1

	l.log.WithFields(logrus.Fields{"booking_id": booking.ID, "table_id": table.ID, "customer_id": customer.ID}).Info("booking created")
	l.publish(ctx, kafka.EventBookingCreated, booking, *customer)
	return &booking, nil
}

func (l *Ledger) Cancel(ctx context.Context, id int) error {
	return l.finish(ctx, id, domain.BookingStatusCancelled, kafka.EventBookingCancelled)
}

// Complete also drops the id from the customer's active list.
func (l *Ledger) Complete(ctx context.Context, id int) error {
	return l.finish(ctx, id, domain.BookingStatusCompleted, kafka.EventBookingCompleted)
}

func (l *Ledger) finish(ctx context.Context, id int, to domain.BookingStatus, eventType string) error {
	done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return err
	}

	b, ok := g.Booking(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}
	if err := b.Transition(to); err != nil {
		return err
	}

	view := g.ResolveBooking(b)
	touched := []repository.Collection{repository.CollectionBookings}
	if l.releaseTable(g, view.Table) {
		touched = append(touched, repository.CollectionTables)
	}
	if !view.Customer.Placeholder {
		view.Customer.RemoveBooking(id)
		touched = append(touched, repository.CollectionCustomers)
	}

	if err := l.commit(ctx, g, touched...); err != nil {
		return fmt.Errorf("%s booking %d: %w", strings.ToLower(string(to)), id, err)
	}

	l.log.WithFields(logrus.Fields{"booking_id": id, "status": to}).Info("booking closed")
	l.publish(ctx, eventType, *b, *view.Customer)
	return nil
}

// Delete removes the booking outright. A confirmed booking frees its table first;
// a broken table or customer link only skips that side effect.
func (l *Ledger) Delete(ctx context.Context, id int) error {
	done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return err
	}

	b, ok := g.Booking(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}
	booking := *b
	view := g.ResolveBooking(b)
	table, customer := view.Table, view.Customer
	detached := l.detachOrders(g, id)

	g.Bookings = slices.DeleteFunc(g.Bookings, func(x domain.Booking) bool { return x.ID == id })
	g.Reindex()

	touched := []repository.Collection{repository.CollectionBookings}
	released := booking.Active() && l.releaseTable(g, table)
	if released || detached {
		touched = append(touched, repository.CollectionTables)
	}
	if !customer.Placeholder && customer.HasActiveBooking(id) {
		customer.RemoveBooking(id)
		touched = append(touched, repository.CollectionCustomers)
	}

	if err := l.commit(ctx, g, touched...); err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}

	l.log.WithField("booking_id", id).Info("booking deleted")
	l.publish(ctx, kafka.EventBookingDeleted, booking, *customer)
	return nil
}

// Update rewrites the guest count and/or time of a booking in place.
func (l *Ledger) Update(ctx context.Context, id int, input UpdateBookingInput) (*domain.Booking, error) {
	var guests int
	if raw := strings.TrimSpace(input.Guests); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: guests %q", ErrInvalidInput, raw)
		}
		guests = n
	}
	var at time.Time
	if raw := strings.TrimSpace(input.Time); raw != "" {
		parsed, err := l.ParseTime(raw)
		if err != nil {
			return nil, err
		}
		at = parsed
	}

	done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	b, ok := g.Booking(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}

	updated := *b
	if guests > 0 {
		updated.Guests = guests
	}
	if !at.IsZero() {
		updated.Time = at
	}
	if l.revalidateOnUpdate && updated.Active() {
		if err := l.revalidate(g, updated); err != nil {
			return nil, err
		}
	}
	*b = updated

	if err := l.commit(ctx, g, repository.CollectionBookings); err != nil {
		return nil, fmt.Errorf("update booking %d: %w", id, err)
	}

	l.log.WithField("booking_id", id).Info("booking updated")
	view := g.ResolveBooking(b)
	l.publish(ctx, kafka.EventBookingUpdated, updated, *view.Customer)
	return &updated, nil
}

// ParseTime reads a user-entered date-time in the configured layout or an ISO form.
func (l *Ledger) ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range append([]string{l.timeLayout}, fallbackLayouts...) {
		if t, err := time.ParseInLocation(layout, raw, l.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q, expected %s", ErrInvalidInput, raw, l.timeLayout)
}

func (l *Ledger) TimeLayout() string {
	return l.timeLayout
}

func (l *Ledger) revalidate(g *resolver.Graph, b domain.Booking) error {
	table, ok := g.Table(b.TableID)
	if !ok {
		return nil
	}
	if b.Guests > table.Capacity {
		return fmt.Errorf("%w: table %d seats %d", ErrCapacityExceeded, table.ID, table.Capacity)
	}
	for _, other := range g.ConfirmedOn(table.ID) {
		if other.ID != b.ID && domain.Overlaps(other.Time, b.Time, l.slot) {
			return fmt.Errorf("%w: table %d, booking %d", ErrTimeConflict, table.ID, other.ID)
		}
	}
	return nil
}

// releaseTable returns the table to AVAILABLE when nothing else holds it.
// It reports whether the table changed.
func (l *Ledger) releaseTable(g *resolver.Graph, t *domain.Table) bool {
	log := l.log.WithField("table_id", t.ID)
	switch {
	case t.Placeholder:
		log.Warn("booking references a missing table, nothing to release")
		return false
	case len(g.ConfirmedOn(t.ID)) > 0:
		log.Warn("table is still held by another confirmed booking")
		return false
	case !t.Held():
		log.WithField("status", t.Status).Warn("table was not held, leaving status as is")
		return false
	}
	return t.Transition(domain.TableStatusAvailable) == nil
}

// detachOrders drops the booking's orders from the order lists of their tables.
func (l *Ledger) detachOrders(g *resolver.Graph, bookingID int) bool {
	changed := false
	for i := range g.Orders {
		o := &g.Orders[i]
		if o.BookingID != bookingID {
			continue
		}
		t := g.ResolveOrder(o).Table
		if t.Placeholder || !slices.Contains(t.OrderIDs, o.ID) {
			continue
		}
		t.DetachOrder(o.ID)
		changed = true
		l.log.WithFields(logrus.Fields{"table_id": t.ID, "order_id": o.ID}).Info("order detached from table")
	}
	return changed
}

// allocateID never hands out an id already in storage, even if another process
// sharing the store has moved past the local counter.
func (l *Ledger) allocateID(g *resolver.Graph) int {
	return max(l.nextBookingID, g.MaxBookingID()+1)
}

func resolveCustomer(g *resolver.Graph, in CustomerInput) *domain.Customer {
	phone := strings.TrimSpace(in.Phone)
	if c, ok := g.CustomerByPhone(phone); ok {
		return c
	}
	g.Customers = append(g.Customers, domain.Customer{
		ID:               g.MaxCustomerID() + 1,
		Name:             strings.TrimSpace(in.Name),
		Phone:            phone,
		Email:            strings.TrimSpace(in.Email),
		Role:             domain.RoleCustomer,
		ActiveBookingIDs: []int{},
	})
	g.Reindex()
	c, _ := g.CustomerByPhone(phone)
	return c
}

// begin enters the critical section: the process mutex, then the shared lock if any.
func (l *Ledger) begin(ctx context.Context) (func(), error) {
	l.mu.Lock()
	if l.locker == nil {
		return l.mu.Unlock, nil
	}
	release, err := l.locker.Acquire(ctx)
	if err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	return func() {
		release()
		l.mu.Unlock()
	}, nil
}

func (l *Ledger) load(ctx context.Context) (*resolver.Graph, error) {
	tables, err := l.store.ReadTables(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := l.store.ReadBookings(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := l.store.ReadCustomers(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := l.store.ReadOrders(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.Build(tables, bookings, customers, orders), nil
}

// snapshot loads a consistent view for read-only queries.
func (l *Ledger) snapshot(ctx context.Context) (*resolver.Graph, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *Ledger) commit(ctx context.Context, g *resolver.Graph, collections ...repository.Collection) error {
	batch := l.store.NewBatch()
	for _, c := range collections {
		switch c {
		case repository.CollectionTables:
			batch.PutTables(g.Tables)
		case repository.CollectionBookings:
			batch.PutBookings(g.Bookings)
		case repository.CollectionCustomers:
			batch.PutCustomers(g.Customers)
		}
	}
	return l.store.Commit(ctx, batch)
}

var _ BookingUseCase = (*Ledger)(nil)
var _ Store = (*repository.Gateway)(nil)
