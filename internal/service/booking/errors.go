package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrTableNotFound    = errors.New("table not found")
	ErrCustomerNotFound = errors.New("customer not found")

	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailableSlot is matched by every "cannot seat this party" failure.
	ErrUnavailableSlot  = errors.New("no slot available")
	ErrNoTableAvailable = fmt.Errorf("%w: no available table seats the party", ErrUnavailableSlot)
	ErrTimeConflict     = fmt.Errorf("%w: table is already booked around that time", ErrUnavailableSlot)
	ErrCapacityExceeded = fmt.Errorf("%w: party exceeds table capacity", ErrUnavailableSlot)

	ErrCustomerHasBookings = errors.New("customer is referenced by bookings")
	ErrPhoneTaken          = errors.New("phone number belongs to another customer")
	ErrTableInUse          = errors.New("table is held by a confirmed booking")
	ErrTableStatusManaged  = errors.New("reserved and occupied states are set by bookings")
)
