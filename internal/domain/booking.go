package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// DefaultSlot is the fixed length of a booking's overlap window.
const DefaultSlot = 2 * time.Hour

type Booking struct {
	ID         int
	CustomerID int
	TableID    int
	Time       time.Time
	Guests     int
	Status     BookingStatus
}

func (b Booking) Active() bool {
	return b.Status == BookingStatusConfirmed
}

// Window returns the [start, start+slot] interval used for conflict checks.
func (b Booking) Window(slot time.Duration) (time.Time, time.Time) {
	return b.Time, b.Time.Add(slot)
}

// Overlaps reports whether two slot-long windows starting at a and b intersect.
// Windows that only touch at an end point count as overlapping.
func Overlaps(a, b time.Time, slot time.Duration) bool {
	aEnd := a.Add(slot)
	bEnd := b.Add(slot)
	return !aEnd.Before(b) && !bEnd.Before(a)
}
