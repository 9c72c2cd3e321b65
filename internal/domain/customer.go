package domain

import (
	"slices"
	"strconv"
	"strings"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleGuest    Role = "guest"
	RoleManager  Role = "manager"
)

const (
	PlaceholderCustomerName  = "unknown customer"
	PlaceholderCustomerPhone = "0000000000"

	standInPhonePrefix = "unknown-"
)

type Customer struct {
	ID               int
	Name             string
	Phone            string
	Email            string
	Role             Role
	Password         string
	ActiveBookingIDs []int

	Placeholder bool
}

func PlaceholderCustomer(id int) *Customer {
	return &Customer{
		ID:               id,
		Name:             PlaceholderCustomerName,
		Phone:            PlaceholderCustomerPhone,
		Role:             RoleGuest,
		ActiveBookingIDs: []int{},
		Placeholder:      true,
	}
}

// StandInPhone is the phone stored on a stand-in customer created for a dangling
// booking. It is unique per id and never matches a phone lookup.
func StandInPhone(id int) string {
	return standInPhonePrefix + strconv.Itoa(id)
}

func IsStandInPhone(phone string) bool {
	return strings.HasPrefix(phone, standInPhonePrefix)
}

func (c *Customer) AddBooking(id int) {
	if !slices.Contains(c.ActiveBookingIDs, id) {
		c.ActiveBookingIDs = append(c.ActiveBookingIDs, id)
	}
}

func (c *Customer) RemoveBooking(id int) {
	c.ActiveBookingIDs = slices.DeleteFunc(c.ActiveBookingIDs, func(v int) bool { return v == id })
}

func (c Customer) HasActiveBooking(id int) bool {
	return slices.Contains(c.ActiveBookingIDs, id)
}

// ParseRole maps free-form input onto a known role; anything unknown is a customer.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleGuest, RoleManager:
		return Role(raw)
	default:
		return RoleCustomer
	}
}
