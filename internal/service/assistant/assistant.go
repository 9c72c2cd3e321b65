// Package assistant executes the intents returned by the natural-language agent.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/restobooking/internal/agent"
	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/sirupsen/logrus"
)

var (
	ErrForbidden    = errors.New("action requires the manager role")
	ErrMissingParam = errors.New("missing parameter")
	ErrAgentFailed  = errors.New("agent could not handle the request")
)

type Ledger interface {
	booking.BookingUseCase
	booking.TableUseCase
	booking.CustomerUseCase
}

type Agent interface {
	Process(ctx context.Context, userInput, sessionID, role string) (*agent.Response, error)
}

type UseCase interface {
	Handle(ctx context.Context, input, sessionID string, role domain.Role) (*Reply, error)
	Execute(ctx context.Context, resp *agent.Response, role domain.Role) (*Reply, error)
}

type Reply struct {
	Action  string `json:"action"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type handler struct {
	managerOnly bool
	run         func(ctx context.Context, p agent.Params) (string, any, error)
}

type Service struct {
	ledger   Ledger
	agent    Agent
	handlers map[string]handler
	aliases  map[string]string
	log      *logrus.Entry
}

func NewService(ledger Ledger, a Agent) *Service {
	s := &Service{ledger: ledger, agent: a, log: logger.WithComponent("assistant")}
	s.handlers = map[string]handler{
		"create_booking":        {run: s.createBooking},
		"cancel_booking":        {run: s.cancelBooking},
		"complete_booking":      {managerOnly: true, run: s.completeBooking},
		"delete_booking":        {managerOnly: true, run: s.deleteBooking},
		"update_booking":        {run: s.updateBooking},
		"show_bookings":         {managerOnly: true, run: s.showBookings},
		"show_available_tables": {run: s.availableTables},
		"show_all_tables":       {run: s.allTables},
		"search_tables":         {run: s.searchTables},
		"add_table":             {managerOnly: true, run: s.addTable},
		"update_table":          {managerOnly: true, run: s.updateTable},
		"delete_table":          {managerOnly: true, run: s.deleteTable},
		"create_customer":       {run: s.createCustomer},
		"get_customer_info":     {run: s.customerInfo},
		"show_customers":        {managerOnly: true, run: s.showCustomers},
		"delete_customer":       {managerOnly: true, run: s.deleteCustomer},
		"fix_data":              {managerOnly: true, run: s.fixData},
	}
	s.aliases = map[string]string{
		"book_table":      "create_booking",
		"show_tables":     "show_all_tables",
		"customer_info":   "get_customer_info",
		"customer_search": "get_customer_info",
	}
	return s
}

// Handle sends the utterance to the agent and executes whatever it asks for.
func (s *Service) Handle(ctx context.Context, input, sessionID string, role domain.Role) (*Reply, error) {
	resp, err := s.agent.Process(ctx, input, sessionID, strings.ToUpper(string(role)))
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, resp, role)
}

// Execute runs one agent intent. Actions the ledger does not own come back with the
// agent's own wording.
func (s *Service) Execute(ctx context.Context, resp *agent.Response, role domain.Role) (*Reply, error) {
	action := resp.Action
	if target, ok := s.aliases[action]; ok {
		action = target
	}
	if action == agent.ActionError {
		return nil, fmt.Errorf("%w: %s", ErrAgentFailed, resp.NaturalResponse)
	}

	h, ok := s.handlers[action]
	if !ok {
		return &Reply{Action: resp.Action, Message: resp.NaturalResponse}, nil
	}
	if h.managerOnly && role != domain.RoleManager {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, action)
	}

	params := resp.Parameters
	if params == nil {
		params = agent.Params{}
	}
	message, data, err := h.run(ctx, params)
	if err != nil {
		s.log.WithError(err).WithField("action", action).Info("action rejected")
		return nil, err
	}
	return &Reply{Action: action, Message: message, Data: data}, nil
}

func (s *Service) createBooking(ctx context.Context, p agent.Params) (string, any, error) {
	guests, err := requireInt(p, "guests")
	if err != nil {
		return "", nil, err
	}
	phone, err := requireString(p, "customerPhone", "phone")
	if err != nil {
		return "", nil, err
	}
	raw, err := requireString(p, "time")
	if err != nil {
		return "", nil, err
	}
	at, err := s.ledger.ParseTime(raw)
	if err != nil {
		return "", nil, err
	}
	name, _ := firstString(p, "customerName", "name")
	email, _ := firstString(p, "customerEmail", "email")

	b, err := s.ledger.Create(ctx, booking.CreateBookingInput{
		Customer: booking.CustomerInput{Name: name, Phone: phone, Email: email},
		Guests:   guests,
		Time:     at,
	})
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Booking #%d confirmed: table %d for %d guest(s) at %s.", b.ID, b.TableID, b.Guests, b.Time.Format(s.ledger.TimeLayout())), b, nil
}

func (s *Service) cancelBooking(ctx context.Context, p agent.Params) (string, any, error) {
	id, err := requireInt(p, "bookingId")
	if err != nil {
		return "", nil, err
	}
	if err := s.ledger.Cancel(ctx, id); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Booking #%d cancelled.", id), nil, nil
}

func (s *Service) completeBooking(ctx context.Context, p agent.Params) (string, any, error) {
	id, err := requireInt(p, "bookingId")
	if err != nil {
		return "", nil, err
	}
	if err := s.ledger.Complete(ctx, id); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Booking #%d completed.", id), nil, nil
}

func (s *Service) deleteBooking(ctx context.Context, p agent.Params) (string, any, error) {
	id, err := requireInt(p, "bookingId")
	if err != nil {
		return "", nil, err
	}
	if err := s.ledger.Delete(ctx, id); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Booking #%d deleted.", id), nil, nil
}

func (s *Service) updateBooking(ctx context.Context, p agent.Params) (string, any, error) {
	id, err := requireInt(p, "bookingId")
	if err != nil {
		return "", nil, err
	}
	guests, _ := p.String("guests")
	at, _ := p.String("time")
	if guests == "" && at == "" {
		return "", nil, fmt.Errorf("%w: guests or time", ErrMissingParam)
	}
	b, err := s.ledger.Update(ctx, id, booking.UpdateBookingInput{Guests: guests, Time: at})
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Booking #%d updated: %d guest(s) at %s.", b.ID, b.Guests, b.Time.Format(s.ledger.TimeLayout())), b, nil
}

func (s *Service) showBookings(ctx context.Context, _ agent.Params) (string, any, error) {
	views, err := s.ledger.Views(ctx)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%d booking(s).", len(views)), views, nil
}

func (s *Service) availableTables(ctx context.Context, p agent.Params) (string, any, error) {
	guests, _ := p.Int("guests")
	tables, err := s.ledger.AvailableTables(ctx, guests)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%d table(s) available.", len(tables)), tables, nil
}

func (s *Service) allTables(ctx context.Context, _ agent.Params) (string, any, error) {
	tables, err := s.ledger.ListTables(ctx)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%d table(s).", len(tables)), tables, nil
}

func (s *Service) searchTables(ctx context.Context, p agent.Params) (string, any, error) {
	keyword, err := requireString(p, "searchTerm", "keyword")
	if err != nil {
		return "", nil, err
	}
	tables, err := s.ledger.SearchTables(ctx, keyword)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%d table(s) match %q.", len(tables), keyword), tables, nil
}

func (s *Service) addTable(ctx context.Context, p agent.Params) (string, any, error) {
	capacity, err := requireInt(p, "capacity")
	if err != nil {
		return "", nil, err
	}
	t, err := s.ledger.AddTable(ctx, capacity)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Table %d added for %d guest(s).", t.ID, t.Capacity), t, nil
}

func (s *Service) updateTable(ctx context.Context, p agent.Params) (string, any, error) {
	id, err := requireInt(p, "tableId")
	if err != nil {
		return "", nil, err
	}
	capacity, _ := p.Int("capacity")
	status, _ := p.String("status")
	t, err := s.ledger.UpdateTable(ctx, id, booking.UpdateTableInput{Capacity: capacity, Status: status})
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Table %d: %d seat(s), %s.", t.ID, t.Capacity, t.Status), t, nil
}

func (s *Service) deleteTable(ctx context.Context, p agent.Params) (string, any, error) {
	id, err := requireInt(p, "tableId")
	if err != nil {
		return "", nil, err
	}
	if err := s.ledger.DeleteTable(ctx, id); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Table %d deleted.", id), nil, nil
}

func (s *Service) createCustomer(ctx context.Context, p agent.Params) (string, any, error) {
	name, err := requireString(p, "customerName", "name")
	if err != nil {
		return "", nil, err
	}
	phone, err := requireString(p, "customerPhone", "phone")
	if err != nil {
		return "", nil, err
	}
	email, _ := firstString(p, "customerEmail", "email")
	c, created, err := s.ledger.RegisterCustomer(ctx, booking.RegisterCustomerInput{Name: name, Phone: phone, Email: email})
	if err != nil {
		return "", nil, err
	}
	if !created {
		return fmt.Sprintf("Customer %s is already registered as #%d.", c.Phone, c.ID), c, nil
	}
	return fmt.Sprintf("Customer #%d registered.", c.ID), c, nil
}

func (s *Service) customerInfo(ctx context.Context, p agent.Params) (string, any, error) {
	phone, err := requireString(p, "customerPhone", "phone", "searchTerm")
	if err != nil {
		return "", nil, err
	}
	c, err := s.ledger.FindCustomerByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	bookings, err := s.ledger.ListByCustomer(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s (%s) has %d booking(s), %d active.", c.Name, c.Phone, len(bookings), len(c.ActiveBookingIDs)),
		map[string]any{"customer": c, "bookings": bookings}, nil
}

func (s *Service) showCustomers(ctx context.Context, _ agent.Params) (string, any, error) {
	customers, err := s.ledger.ListCustomers(ctx)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%d customer(s).", len(customers)), customers, nil
}

func (s *Service) deleteCustomer(ctx context.Context, p agent.Params) (string, any, error) {
	id, ok := p.Int("customerId")
	if !ok {
		phone, err := requireString(p, "customerPhone", "phone")
		if err != nil {
			return "", nil, fmt.Errorf("%w: customerId or customerPhone", ErrMissingParam)
		}
		c, err := s.ledger.FindCustomerByPhone(ctx, phone)
		if err != nil {
			return "", nil, err
		}
		id = c.ID
	}
	if err := s.ledger.DeleteCustomer(ctx, id); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Customer #%d deleted.", id), nil, nil
}

func (s *Service) fixData(ctx context.Context, _ agent.Params) (string, any, error) {
	report, err := s.ledger.Reconcile(ctx)
	if err != nil {
		return "", nil, err
	}
	if !report.Changed() {
		return "Data is consistent, nothing to repair.", report, nil
	}
	return fmt.Sprintf("Repaired: %d customer(s) created, %d active list(s), %d table(s).",
		report.CustomersCreated, report.ActiveListsFixed, report.TablesFixed), report, nil
}

func requireInt(p agent.Params, key string) (int, error) {
	n, ok := p.Int(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return n, nil
}

func requireString(p agent.Params, keys ...string) (string, error) {
	v, ok := firstString(p, keys...)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, keys[0])
	}
	return v, nil
}

func firstString(p agent.Params, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := p.String(k); ok {
			return v, true
		}
	}
	return "", false
}

var _ UseCase = (*Service)(nil)
