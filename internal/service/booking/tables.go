package booking

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/Domenick1991/restobooking/internal/service/allocation"
	"github.com/sirupsen/logrus"
)

type TableUseCase interface {
	AddTable(ctx context.Context, capacity int) (*domain.Table, error)
	GetTable(ctx context.Context, id int) (*domain.Table, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
	AvailableTables(ctx context.Context, guests int) ([]domain.Table, error)
	SearchTables(ctx context.Context, keyword string) ([]domain.Table, error)
	UpdateTable(ctx context.Context, id int, input UpdateTableInput) (*domain.Table, error)
	DeleteTable(ctx context.Context, id int) error
}

// UpdateTableInput: zero capacity and empty status mean unchanged.
type UpdateTableInput struct {
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

func (l *Ledger) AddTable(ctx context.Context, capacity int) (*domain.Table, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
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
	table := domain.NewTable(g.MaxTableID()+1, capacity)
	g.Tables = append(g.Tables, table)

	if err := l.commit(ctx, g, repository.CollectionTables); err != nil {
		return nil, fmt.Errorf("add table: %w", err)
	}
	l.log.WithFields(logrus.Fields{"table_id": table.ID, "capacity": capacity}).Info("table added")
	return &table, nil
}

func (l *Ledger) GetTable(ctx context.Context, id int) (*domain.Table, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := g.Table(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTableNotFound, id)
	}
	out := *t
	return &out, nil
}

func (l *Ledger) ListTables(ctx context.Context) ([]domain.Table, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.Tables, nil
}

// AvailableTables lists available tables seating at least guests; zero lists all of them.
func (l *Ledger) AvailableTables(ctx context.Context, guests int) ([]domain.Table, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if guests <= 0 {
		return allocation.Available(g.Tables), nil
	}
	return allocation.Candidates(g.Tables, guests), nil
}

// SearchTables matches the keyword against id, capacity or status (case-insensitive).
func (l *Ledger) SearchTables(ctx context.Context, keyword string) ([]domain.Table, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	keyword = strings.TrimSpace(keyword)
	n, numErr := strconv.Atoi(keyword)

	out := make([]domain.Table, 0)
	for _, t := range g.Tables {
		if numErr == nil && (t.ID == n || t.Capacity == n) {
			out = append(out, t)
			continue
		}
		if strings.EqualFold(string(t.Status), keyword) {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateTable changes capacity and/or status. Capacity may not drop below a confirmed
// party on the table. RESERVED and OCCUPIED are only entered through bookings, except
// seating a reserved table.
func (l *Ledger) UpdateTable(ctx context.Context, id int, input UpdateTableInput) (*domain.Table, error) {
	if input.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}
	var status domain.TableStatus
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, err := domain.ParseTableStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		status = parsed
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
	t, ok := g.Table(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTableNotFound, id)
	}
	holders := g.ConfirmedOn(id)

	if input.Capacity > 0 {
		for _, b := range holders {
			if b.Guests > input.Capacity {
				return nil, fmt.Errorf("%w: booking %d has %d guests", ErrCapacityExceeded, b.ID, b.Guests)
			}
		}
		t.Capacity = input.Capacity
	}

	if status != "" && status != t.Status {
		switch {
		case status == domain.TableStatusOccupied && t.Status == domain.TableStatusReserved:
		case status == domain.TableStatusReserved || status == domain.TableStatusOccupied:
			return nil, fmt.Errorf("%w: table %d", ErrTableStatusManaged, id)
		case len(holders) > 0:
			return nil, fmt.Errorf("%w: table %d", ErrTableInUse, id)
		}
		if err := t.Transition(status); err != nil {
			return nil, err
		}
	}

	if err := l.commit(ctx, g, repository.CollectionTables); err != nil {
		return nil, fmt.Errorf("update table %d: %w", id, err)
	}
	l.log.WithFields(logrus.Fields{"table_id": id, "status": t.Status, "capacity": t.Capacity}).Info("table updated")
	out := *t
	return &out, nil
}

func (l *Ledger) DeleteTable(ctx context.Context, id int) error {
	done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := g.Table(id); !ok {
		return fmt.Errorf("%w: %d", ErrTableNotFound, id)
	}
	if holders := g.ConfirmedOn(id); len(holders) > 0 {
		return fmt.Errorf("%w: table %d, booking %d", ErrTableInUse, id, holders[0].ID)
	}

	g.Tables = slices.DeleteFunc(g.Tables, func(t domain.Table) bool { return t.ID == id })
	if err := l.commit(ctx, g, repository.CollectionTables); err != nil {
		return fmt.Errorf("delete table %d: %w", id, err)
	}
	l.log.WithField("table_id", id).Info("table deleted")
	return nil
}

var _ TableUseCase = (*Ledger)(nil)
