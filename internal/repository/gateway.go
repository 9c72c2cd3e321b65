package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable wraps every storage failure so callers can tell it apart from an
// empty collection.
var ErrUnavailable = errors.New("storage unavailable")

type Collection string

const (
	CollectionTables    Collection = "tables"
	CollectionBookings  Collection = "bookings"
	CollectionCustomers Collection = "customers"
	CollectionOrders    Collection = "orders"
)

// Write replaces one whole collection.
type Write struct {
	Collection Collection
	Data       []byte
}

// Backend stores one JSON array per collection. Read returns nil data and a nil
// error for a collection that was never written. Write must apply all writes or none.
type Backend interface {
	Read(ctx context.Context, c Collection) ([]byte, error)
	Write(ctx context.Context, writes []Write) error
}

// CommitHook runs after a successful commit. It cannot fail the commit.
type CommitHook func(ctx context.Context, collections []Collection)

type Option func(*Gateway)

func WithLocation(loc *time.Location) Option {
	return func(g *Gateway) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func WithCommitHook(hook CommitHook) Option {
	return func(g *Gateway) {
		if hook != nil {
			g.hooks = append(g.hooks, hook)
		}
	}
}

// Gateway is the typed, whole-collection view over a Backend.
type Gateway struct {
	backend Backend
	loc     *time.Location
	hooks   []CommitHook
	log     *logrus.Entry
}

func NewGateway(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend: backend,
		loc:     time.Local,
		log:     logger.WithComponent("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) ReadTables(ctx context.Context) ([]domain.Table, error) {
	var records []TableRecord
	if err := g.read(ctx, CollectionTables, &records); err != nil {
		return nil, err
	}
	tables := make([]domain.Table, 0, len(records))
	for _, r := range records {
		t, err := r.toDomain()
		if err != nil {
			return nil, g.corrupt(CollectionTables, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (g *Gateway) ReadBookings(ctx context.Context) ([]domain.Booking, error) {
	var records []BookingRecord
	if err := g.read(ctx, CollectionBookings, &records); err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(records))
	for _, r := range records {
		b, err := r.toDomain(g.loc)
		if err != nil {
			return nil, g.corrupt(CollectionBookings, err)
		}
		if b.Time.IsZero() && r.BookingTime != "" {
			g.log.WithFields(logrus.Fields{"booking_id": r.BookingID, "value": r.BookingTime}).Warn("unparsable booking time")
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (g *Gateway) ReadCustomers(ctx context.Context) ([]domain.Customer, error) {
	var records []CustomerRecord
	if err := g.read(ctx, CollectionCustomers, &records); err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(records))
	for _, r := range records {
		customers = append(customers, r.toDomain())
	}
	return customers, nil
}

func (g *Gateway) ReadOrders(ctx context.Context) ([]domain.Order, error) {
	var records []OrderRecord
	if err := g.read(ctx, CollectionOrders, &records); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, r.toDomain(g.loc))
	}
	return orders, nil
}

func (g *Gateway) WriteTables(ctx context.Context, tables []domain.Table) error {
	return g.Commit(ctx, g.NewBatch().PutTables(tables))
}

func (g *Gateway) WriteBookings(ctx context.Context, bookings []domain.Booking) error {
	return g.Commit(ctx, g.NewBatch().PutBookings(bookings))
}

func (g *Gateway) WriteCustomers(ctx context.Context, customers []domain.Customer) error {
	return g.Commit(ctx, g.NewBatch().PutCustomers(customers))
}

func (g *Gateway) WriteOrders(ctx context.Context, orders []domain.Order) error {
	return g.Commit(ctx, g.NewBatch().PutOrders(orders))
}

func (g *Gateway) NewBatch() *Batch {
	return &Batch{loc: g.loc}
}

// Commit writes every staged collection in one backend transaction.
func (g *Gateway) Commit(ctx context.Context, b *Batch) error {
	if b.err != nil {
		return b.err
	}
	if len(b.writes) == 0 {
		return nil
	}
	if err := g.backend.Write(ctx, b.writes); err != nil {
		g.log.WithError(err).WithField("collections", b.Collections()).Error("commit failed")
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	for _, hook := range g.hooks {
		hook(ctx, b.Collections())
	}
	return nil
}

func (g *Gateway) read(ctx context.Context, c Collection, dst any) error {
	data, err := g.backend.Read(ctx, c)
	if err != nil {
		g.log.WithError(err).WithField("collection", c).Error("read failed")
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, c, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := decode(data, dst); err != nil {
		return g.corrupt(c, err)
	}
	return nil
}

func (g *Gateway) corrupt(c Collection, err error) error {
	g.log.WithError(err).WithField("collection", c).Error("corrupt collection")
	return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, c, err)
}

// Batch stages whole collections for an atomic commit. Order of Put calls is the
// order the backend applies them in.
type Batch struct {
	loc    *time.Location
	writes []Write
	err    error
}

func (b *Batch) PutTables(tables []domain.Table) *Batch {
	records := make([]TableRecord, 0, len(tables))
	for _, t := range tables {
		if t.Placeholder {
			continue
		}
		records = append(records, tableRecord(t))
	}
	return b.put(CollectionTables, records)
}

func (b *Batch) PutBookings(bookings []domain.Booking) *Batch {
	records := make([]BookingRecord, 0, len(bookings))
	for _, bk := range bookings {
		records = append(records, bookingRecord(bk, b.loc))
	}
	return b.put(CollectionBookings, records)
}

func (b *Batch) PutCustomers(customers []domain.Customer) *Batch {
	records := make([]CustomerRecord, 0, len(customers))
	for _, c := range customers {
		if c.Placeholder {
			continue
		}
		records = append(records, customerRecord(c))
	}
	return b.put(CollectionCustomers, records)
}

func (b *Batch) PutOrders(orders []domain.Order) *Batch {
	records := make([]OrderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, orderRecord(o, b.loc))
	}
	return b.put(CollectionOrders, records)
}

func (b *Batch) Collections() []Collection {
	out := make([]Collection, 0, len(b.writes))
	for _, w := range b.writes {
		out = append(out, w.Collection)
	}
	return out
}

func (b *Batch) put(c Collection, records any) *Batch {
	if b.err != nil {
		return b
	}
	data, err := encode(records)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", c, err)
		return b
	}
	for i := range b.writes {
		if b.writes[i].Collection == c {
			b.writes[i].Data = data
			return b
		}
	}
	b.writes = append(b.writes, Write{Collection: c, Data: data})
	return b
}
