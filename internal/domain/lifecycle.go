package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTransition = errors.New("invalid state transition")

var ErrUnknownStatus = errors.New("unknown status")

// TransitionError describes a rejected status change.
type TransitionError struct {
	Entity string
	ID     int
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %d: cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusCancelled: nil,
	BookingStatusCompleted: nil,
}

var tableTransitions = map[TableStatus][]TableStatus{
	TableStatusAvailable:   {TableStatusReserved, TableStatusOccupied, TableStatusMaintenance},
	TableStatusReserved:    {TableStatusOccupied, TableStatusAvailable},
	TableStatusOccupied:    {TableStatusAvailable},
	TableStatusMaintenance: {TableStatusAvailable},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	next, known := bookingTransitions[s]
	return known && len(next) == 0
}

func (s TableStatus) CanTransition(to TableStatus) bool {
	for _, next := range tableTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition applies the status change or returns a *TransitionError.
func (b *Booking) Transition(to BookingStatus) error {
	if !b.Status.CanTransition(to) {
		return &TransitionError{Entity: "booking", ID: b.ID, From: string(b.Status), To: string(to)}
	}
	b.Status = to
	return nil
}

func (t *Table) Transition(to TableStatus) error {
	if !t.Status.CanTransition(to) {
		return &TransitionError{Entity: "table", ID: t.ID, From: string(t.Status), To: string(to)}
	}
	t.Status = to
	return nil
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := bookingTransitions[s]; !ok {
		return "", fmt.Errorf("%w: booking status %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

func ParseTableStatus(raw string) (TableStatus, error) {
	s := TableStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := tableTransitions[s]; !ok {
		return "", fmt.Errorf("%w: table status %q", ErrUnknownStatus, raw)
	}
	return s, nil
}
