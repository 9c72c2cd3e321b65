// Package allocation picks tables for a party, independent of time.
package allocation

import "github.com/Domenick1991/restobooking/internal/domain"

// FindAvailable returns the first available table, in collection order, that seats
// the party. It is first-fit: a larger table may be chosen while a tighter one is free.
func FindAvailable(tables []domain.Table, guests int) (*domain.Table, bool) {
	for i := range tables {
		if tables[i].Fits(guests) {
			return &tables[i], true
		}
	}
	return nil, false
}

// Candidates lists every available table that seats the party.
func Candidates(tables []domain.Table, guests int) []domain.Table {
	out := make([]domain.Table, 0)
	for _, t := range tables {
		if t.Fits(guests) {
			out = append(out, t)
		}
	}
	return out
}

func Available(tables []domain.Table) []domain.Table {
	return Candidates(tables, 0)
}
