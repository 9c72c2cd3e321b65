package booking

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type CustomerUseCase interface {
	RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*domain.Customer, bool, error)
	GetCustomer(ctx context.Context, id int) (*domain.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int, input UpdateCustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int) error
}

type RegisterCustomerInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UpdateCustomerInput leaves empty fields unchanged.
type UpdateCustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterCustomer is idempotent by phone: an existing customer is returned as stored
// and created is false.
func (l *Ledger) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*domain.Customer, bool, error) {
	name, phone := strings.TrimSpace(input.Name), strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, false, fmt.Errorf("%w: name and phone are required", ErrInvalidInput)
	}
	if domain.IsStandInPhone(phone) {
		return nil, false, fmt.Errorf("%w: phone %q is reserved", ErrInvalidInput, phone)
	}

	done, err := l.begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return nil, false, err
	}
	if existing, ok := g.CustomerByPhone(phone); ok {
		out := *existing
		return &out, false, nil
	}

	customer := domain.Customer{
		ID:               g.MaxCustomerID() + 1,
		Name:             name,
		Phone:            phone,
		Email:            strings.TrimSpace(input.Email),
		Role:             domain.ParseRole(strings.ToLower(strings.TrimSpace(input.Role))),
		ActiveBookingIDs: []int{},
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), l.hashCost)
		if err != nil {
			return nil, false, fmt.Errorf("hash credential: %w", err)
		}
		customer.Password = string(hash)
	}
	g.Customers = append(g.Customers, customer)

	if err := l.commit(ctx, g, repository.CollectionCustomers); err != nil {
		return nil, false, fmt.Errorf("register customer: %w", err)
	}
	l.log.WithField("customer_id", customer.ID).Info("customer registered")
	return &customer, true, nil
}

func (l *Ledger) GetCustomer(ctx context.Context, id int) (*domain.Customer, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := g.Customer(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}
	out := *c
	return &out, nil
}

func (l *Ledger) FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := g.CustomerByPhone(strings.TrimSpace(phone))
	if !ok {
		return nil, fmt.Errorf("%w: phone %s", ErrCustomerNotFound, phone)
	}
	out := *c
	return &out, nil
}

func (l *Ledger) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	g, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return g.Customers, nil
}

// UpdateCustomer edits contact details. Active booking ids are kept.
func (l *Ledger) UpdateCustomer(ctx context.Context, id int, input UpdateCustomerInput) (*domain.Customer, error) {
	done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := g.Customer(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}

	if phone := strings.TrimSpace(input.Phone); phone != "" && phone != c.Phone {
		if domain.IsStandInPhone(phone) {
			return nil, fmt.Errorf("%w: phone %q is reserved", ErrInvalidInput, phone)
		}
		if other, taken := g.CustomerByPhone(phone); taken && other.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrPhoneTaken, phone)
		}
		c.Phone = phone
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		c.Name = name
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		c.Email = email
	}
	if role := strings.TrimSpace(input.Role); role != "" {
		c.Role = domain.ParseRole(strings.ToLower(role))
	}

	if err := l.commit(ctx, g, repository.CollectionCustomers); err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	l.log.WithField("customer_id", id).Info("customer updated")
	out := *c
	return &out, nil
}

// DeleteCustomer is refused while any booking, in any status, references the customer.
func (l *Ledger) DeleteCustomer(ctx context.Context, id int) error {
	done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	g, err := l.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := g.Customer(id); !ok {
		return fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}
	if refs := g.BookingsOf(id); len(refs) > 0 {
		return fmt.Errorf("%w: customer %d has %d booking(s)", ErrCustomerHasBookings, id, len(refs))
	}

	g.Customers = slices.DeleteFunc(g.Customers, func(c domain.Customer) bool { return c.ID == id })
	if err := l.commit(ctx, g, repository.CollectionCustomers); err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	l.log.WithFields(logrus.Fields{"customer_id": id}).Info("customer deleted")
	return nil
}

var _ CustomerUseCase = (*Ledger)(nil)
